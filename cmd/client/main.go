package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/apiclient"
)

func main() {
	var (
		serverAddr  string
		participant string
		hash        string
		asJSON      bool
		interval    time.Duration
	)
	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	flag.StringVar(&participant, "participant", "", "Analyze only this sender")
	flag.StringVar(&hash, "hash", "", "Request a cached report by transcript hash instead of uploading a file")
	flag.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	flag.DurationVar(&interval, "interval", 2*time.Second, "Task status polling interval")
	flag.Parse()

	if hash == "" && flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <_chat.txt|export.zip>")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, apiclient.New(serverAddr, 0), flag.Arg(0), hash, participant, asJSON, interval); err != nil {
		if errors.Is(err, apiclient.ErrTaskFailed) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *apiclient.Client, path, hash, participant string, asJSON bool, interval time.Duration) error {
	var (
		started *apiclient.StartTaskResponse
		err     error
	)
	if hash != "" {
		started, err = c.StartTaskByHash(ctx, hash, participant)
	} else {
		file, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("не удалось открыть файл %s: %w", path, openErr)
		}
		defer file.Close()
		started, err = c.StartTask(ctx, apiclient.DocumentFile{Name: filepath.Base(path), Content: file}, participant)
	}
	if err != nil {
		return fmt.Errorf("не удалось создать задачу: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Задача создана с идентификатором: %s\n", started.TaskID)

	if _, err := c.WaitForTask(ctx, started.TaskID, interval); err != nil {
		return err
	}

	result, err := c.GetTaskResult(ctx, started.TaskID)
	if err != nil {
		return fmt.Errorf("не удалось получить результат: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Хеш расшифровки: %s\n", result.Hash)

	if asJSON {
		return exporter.NewJSONExporter(os.Stdout, true).Export(result.Report)
	}
	return exporter.NewConsoleExporter(os.Stdout, exporter.TableOptions{}).Export(result.Report)
}
