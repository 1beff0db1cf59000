package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"salespilot/internal/insight"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [customer] [question...]",
	Short: "Ask a one-off question about an account",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [customer]",
	Short: "Start an interactive chat session about an account",
	Long: `Starts a persisted chat session grounded in the customer's contract,
release, and risk data. Type "exit" to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func newAssistant(a *app) (*insight.Assistant, error) {
	client, err := newLLMClient()
	if err != nil {
		return nil, err
	}
	return insight.NewAssistant(a.store, a.retriever, client, cfg.Storage.RetrievalK), nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	customer := args[0]
	question := strings.Join(args[1:], " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	assistant, err := newAssistant(a)
	if err != nil {
		return err
	}

	answer, err := assistant.Ask(context.Background(), customer, question, "")
	if err != nil {
		return err
	}
	return printAnswer(answer)
}

func runChat(cmd *cobra.Command, args []string) error {
	customer := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	assistant, err := newAssistant(a)
	if err != nil {
		return err
	}

	sessionID, err := assistant.NewSession(customer, fmt.Sprintf("chat about %s", customer))
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Chatting about %s", customer)))
	fmt.Println(mutedStyle.Render("Type your question, or \"exit\" to leave."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return scanner.Err()
		}

		answer, err := assistant.Ask(context.Background(), customer, question, sessionID)
		if err != nil {
			fmt.Println(mutedStyle.Render("error: " + err.Error()))
			continue
		}
		if err := printAnswer(answer); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printAnswer(answer string) error {
	rendered, err := renderMarkdown(answer)
	if err != nil {
		fmt.Println(answer)
		return nil
	}
	fmt.Println(rendered)
	return nil
}
