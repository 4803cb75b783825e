package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/apogee-blog/apogee/internal/config"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Underline(true)
)

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render(msg), err)
	os.Exit(1)
}

// Writes an example config.yaml with every option set to its default.
func main() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fail("Error generating YAML:", err)
	}

	header := "# Apogee Configuration Example\n# Copy this file to config.yaml and customize as needed\n\n"
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fail("Error writing file:", err)
	}
	fmt.Printf("%s %s\n", successStyle.Render("Generated example config:"), pathStyle.Render(outputFile))
}
