package main

import (
	"fmt"
	"os"

	"github.com/egoavara/formguard/cmd"
	"github.com/egoavara/formguard/internal/config"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/jeandeaual/go-locale"
)

func main() {
	if err := i18n.Init(getLocale()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Register plugin aliases (search, update)
	cmd.RegisterPluginAliases()

	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.GetLocale()

	// If "auto", detect system locale
	if configLocale == "auto" {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return i18n.DefaultLocale
		}
		return userLocale
	}

	// Use configured locale
	return configLocale
}
