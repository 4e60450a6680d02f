package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"node.town/relay/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Print every setting after flags, environment and config.yaml are merged. Secrets are masked.`,
	Run: func(cmd *cobra.Command, args []string) {
		renderConfig(os.Stdout, viper.GetViper())
	},
}

func configRows(v *viper.Viper) [][]string {
	keys := v.AllKeys()
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		if key == "prompt" || strings.HasPrefix(key, "prompt.") {
			continue
		}
		value := fmt.Sprint(v.Get(key))
		if config.IsSecret(key) {
			value = mask(value)
		}
		rows = append(rows, []string{key, value})
	}
	return rows
}

func renderConfig(w io.Writer, v *viper.Viper) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.AppendBulk(configRows(v))
	table.Render()

	if file := v.ConfigFileUsed(); file != "" {
		fmt.Fprintf(w, "\nconfig file: %s\n", file)
	}
}

func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}
