// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bailey-assistant/pkg/registry"
)

var registryPath string

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{initCmd, addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/model-registry.json", "Path to registry file")
	}

	// Add command flags
	keyAdd := addCmd.String("key", "", "Model key used in settings (e.g., gpt-4o-mini)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., GPT-4o mini)")
	description := addCmd.String("description", "", "Description")
	provider := addCmd.String("provider", "", "Provider (openai, anthropic, genai, none)")
	model := addCmd.String("model", "", "Provider model name")
	maxTokens := addCmd.Int("maxTokens", 1000, "Max tokens per reply")

	// Update command flags
	keyUpdate := updateCmd.String("key", "", "Model key to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, provider, model, maxTokens)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := saveRegistry(registry.DefaultRegistry(), registryPath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default registry to %s\n", registryPath)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *keyAdd == "" || *displayName == "" || *provider == "" {
			fmt.Println("Error: key, displayName and provider are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		m := registry.Model{
			Key:         *keyAdd,
			DisplayName: *displayName,
			Description: *description,
			Provider:    registry.Provider(*provider),
			Model:       *model,
			MaxTokens:   *maxTokens,
		}
		if err := addModel(m); err != nil {
			fmt.Printf("Error adding model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added model: %s\n", *keyAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *keyUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: key, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateModel(*keyUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated model %s, field %s to %s\n", *keyUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if _, ok := reg.Lookup(registry.KnowledgeBaseKey); !ok {
			fmt.Printf("Warning: registry has no %q entry; it is still the fallback model.\n", registry.KnowledgeBaseKey)
		}
		fmt.Printf("Registry validation passed. Found %d models.\n", len(reg.Models))

	case "help":
		fallthrough
	default:
		help()
	}
}

func loadOrDefault() (*registry.ModelRegistry, error) {
	reg, err := registry.LoadRegistry(registryPath)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return registry.DefaultRegistry(), nil
	}
	return nil, fmt.Errorf("failed to load registry: %w", err)
}

func addModel(m registry.Model) error {
	reg, err := loadOrDefault()
	if err != nil {
		return err
	}
	if _, exists := reg.Lookup(m.Key); exists {
		return fmt.Errorf("model with key %s already exists", m.Key)
	}

	reg.Models = append(reg.Models, m)
	return saveRegistry(reg, registryPath)
}

func updateModel(key, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Models {
		if reg.Models[i].Key != key {
			continue
		}
		found = true
		switch field {
		case "displayName":
			reg.Models[i].DisplayName = value
		case "description":
			reg.Models[i].Description = value
		case "provider":
			reg.Models[i].Provider = registry.Provider(value)
		case "model":
			reg.Models[i].Model = value
		case "maxTokens":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid maxTokens value: %w", err)
			}
			reg.Models[i].MaxTokens = n
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("model with key %s not found", key)
	}
	return saveRegistry(reg, registryPath)
}

// saveRegistry validates, stamps and writes the registry.
func saveRegistry(reg *registry.ModelRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in model registry to a file
  add      Add a model to the registry
  update   Update an existing model's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater init -path configs/model-registry.json
  registry-updater add -key gpt-4.1-mini -displayName "GPT-4.1 mini" -provider openai -model gpt-4.1-mini
  registry-updater update -key claude-haiku -field maxTokens -value 800
  registry-updater validate -path configs/model-registry.json

Use 'registry-updater <command> -h' for more information about a command.

`)
}
