package main

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"node.town/relay/monitor"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Watch a running relay from the terminal",
	Run:   runListen,
}

func init() {
	listenCmd.Flags().
		String("url", "ws://localhost:8080/ws", "Relay websocket URL")
	listenCmd.Flags().
		String("log-file", "relay-listen.log", "Where logs go while the UI owns the terminal")
}

func runListen(cmd *cobra.Command, args []string) {
	logFile, _ := cmd.Flags().GetString("log-file")
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Fatal("open log file", "error", err)
	}
	defer f.Close()
	logger.SetOutput(f)

	mainLogger, _, _, _, _, _ := createLoggers()

	url, _ := cmd.Flags().GetString("url")
	mainLogger.Info("listen", "url", url)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := monitor.Dial(ctx, url)
	if err != nil {
		mainLogger.Fatal("connect", "error", err)
	}
	defer client.Close()

	msgs := make(chan tea.Msg, 16)
	go client.Run(msgs)

	if _, err := monitor.NewProgram(url, msgs).Run(); err != nil {
		mainLogger.Fatal("listen", "error", err)
	}
}
