package main

import "os"

func anthropicAPIKey() string { return os.Getenv("ANTHROPIC_API_KEY") }

func anthropicDefaultModel() string {
	if m := os.Getenv("ANTHROPIC_MODEL"); m != "" {
		return m
	}
	return "claude-3-5-sonnet-latest"
}

func openaiAPIKey() string { return os.Getenv("OPENAI_API_KEY") }

func openaiDefaultModel() string {
	if m := os.Getenv("OPENAI_MODEL"); m != "" {
		return m
	}
	return "gpt-4o"
}
