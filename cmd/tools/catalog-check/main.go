// cmd/tools/catalog-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bailey-assistant/internal/assistant/intent"
	"bailey-assistant/internal/assistant/knowledge"
	"bailey-assistant/internal/assistant/safety"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	scoreCmd := flag.NewFlagSet("score", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)

	validatePath := validateCmd.String("path", "", "Catalog file (.yaml or .json); empty checks the built-in catalog")

	scorePath := scoreCmd.String("path", "", "Catalog file; empty uses the built-in catalog")
	message := scoreCmd.String("message", "", "Message to classify and score")

	exportPath := exportCmd.String("out", "configs/catalog.yaml", "Output file; .json writes JSON, anything else YAML")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		c, err := load(*validatePath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d entries.\n", c.Len())

	case "score":
		scoreCmd.Parse(os.Args[2:])
		if *message == "" {
			fmt.Println("Error: message is required for score.")
			scoreCmd.Usage()
			os.Exit(1)
		}
		c, err := load(*scorePath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		score(c, *message)

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := export(*exportPath); err != nil {
			fmt.Printf("Error exporting catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote built-in catalog to %s\n", *exportPath)

	case "help":
		fallthrough
	default:
		help()
	}
}

func load(path string) (*knowledge.Catalog, error) {
	if path == "" {
		return knowledge.DefaultCatalog()
	}
	return knowledge.LoadFile(path)
}

func score(c *knowledge.Catalog, message string) {
	fmt.Printf("Intent: %s\n", intent.Classify(message))

	if o := safety.Check(message, safety.AllEnabled()); o != nil {
		fmt.Printf("Safety override: %s", o.Kind)
		if o.ObjectionType != "" {
			fmt.Printf(" (%s)", o.ObjectionType)
		}
		fmt.Println()
	}

	matches := knowledge.Score(message, c)
	if len(matches) == 0 {
		fmt.Println("No knowledge matches.")
		return
	}
	for i, m := range matches {
		fmt.Printf("%d. %-28s %6.2f  %s\n", i+1, m.Entry.ID, m.Score, m.Entry.Title)
	}
}

func export(path string) error {
	c, err := knowledge.DefaultCatalog()
	if err != nil {
		return err
	}
	doc := map[string]interface{}{"entries": c.Entries()}

	var data []byte
	if knowledge.FormatFromPath(path) == knowledge.FormatJSON {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func help() {
	fmt.Println(`
Usage: catalog-check <command> [flags]

Commands:
  validate Check a catalog file against the catalog schema
  score    Show intent, safety override and ranked matches for a message
  export   Write the built-in catalog to a file as a starting point
  help     Show this help message

Examples:
  catalog-check validate -path configs/catalog.yaml
  catalog-check score -message "What is a Tenant Doctor arrangement?"
  catalog-check export -out configs/catalog.yaml`)
}
