package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/gate"
	"github.com/promptgate/promptgate/pkg/infra/airs"
	"github.com/promptgate/promptgate/pkg/infra/httpx"
	"github.com/promptgate/promptgate/pkg/infra/logger"
	"github.com/promptgate/promptgate/pkg/infra/providers"
	"github.com/promptgate/promptgate/pkg/infra/providers/openai"
	"github.com/promptgate/promptgate/pkg/verdict"
)

// Fixed sampling parameters for every completion. No conversation history
// is ever supplied: each message stands alone.
const (
	completionMaxTokens        = 800
	completionTemperature      = 0.7
	completionTopP             = 0.95
	completionFrequencyPenalty = 0
	completionPresencePenalty  = 0
)

const (
	breakerCooldown    = 30 * time.Second
	breakerMaxFailures = 5
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logr := logger.NewLogger()

	cfg, err := config.Load("")
	if err != nil {
		logr.Fatalf("failed to load config: %v", err)
	}

	controller := buildController(cfg, logr)

	logr.WithFields(logrus.Fields{
		"scanner_base_url": cfg.Scanner.BaseURL,
		"profile":          cfg.Scanner.ProfileName,
		"model":            cfg.Completion.Model,
	}).Info("secure chat pipeline ready")

	runChatLoop(os.Stdin, controller)
}

func buildController(cfg *config.Config, logr *logrus.Logger) *gate.Controller {
	httpClient := httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.Scanner.Timeout))
	breaker := httpx.NewCircuitBreaker("airs-scan", breakerCooldown, breakerMaxFailures)

	scanClient := airs.NewAIRSClient(
		logr,
		airs.Credentials{
			BaseURL:     cfg.Scanner.BaseURL,
			APIKey:      cfg.Scanner.APIKey,
			ProfileName: cfg.Scanner.ProfileName,
		},
		airs.WithHTTPClient(httpClient),
		airs.WithCircuitBreaker(breaker),
	)

	completionClient, err := openai.NewOpenaiClient(map[string]any{
		"timeout": cfg.Completion.Timeout,
	})
	if err != nil {
		logr.Fatalf("failed to initialize completion client: %v", err)
	}

	completionConfig := &providers.Config{
		Credentials:      providers.Credentials{ApiKey: cfg.Completion.APIKey},
		Model:            cfg.Completion.Model,
		MaxTokens:        completionMaxTokens,
		Temperature:      completionTemperature,
		TopP:             completionTopP,
		FrequencyPenalty: completionFrequencyPenalty,
		PresencePenalty:  completionPresencePenalty,
		SystemPrompt:     cfg.Completion.SystemPrompt,
	}

	return gate.NewController(scanClient, completionClient, completionConfig, logr)
}

func runChatLoop(in *os.File, controller *gate.Controller) {
	fmt.Println("Secure chat ready. Every message is scanned before processing.")
	fmt.Println("Type 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") {
			fmt.Println("Session terminated. Goodbye!")
			return
		}
		if input == "" {
			fmt.Println("Please enter a non-empty message.")
			continue
		}

		outcome := controller.Process(context.Background(), input)
		printOutcome(outcome)
	}
}

func printOutcome(outcome *gate.Outcome) {
	if outcome.Err != nil && outcome.Err.Phase == gate.PhaseScan {
		fmt.Println("Could not verify the safety of your message; it was not processed.")
		return
	}

	if outcome.Blocked() {
		fmt.Println("This message cannot be processed due to security policy violations.")
		if len(outcome.Findings) > 0 {
			fmt.Println("Detected threats:")
			for _, finding := range outcome.Findings {
				fmt.Printf("  - %s (%s)\n", finding.DisplayName, finding.Origin)
			}
		}
		return
	}

	if outcome.Err != nil && outcome.Err.Phase == gate.PhaseGeneration {
		fmt.Println("Your message passed security screening, but response generation is currently unavailable.")
		return
	}

	if outcome.Decision == verdict.Allow {
		fmt.Printf("\nAssistant: %s\n", outcome.GeneratedText)
	}
}
