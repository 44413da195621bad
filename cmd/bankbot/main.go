package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bankbot/internal/chat"
	"bankbot/internal/chunker"
	"bankbot/internal/config"
	"bankbot/internal/domain"
	"bankbot/internal/embedding/openai"
	"bankbot/internal/embedding/tfidf"
	"bankbot/internal/llm"
	"bankbot/internal/loader"
	"bankbot/internal/logger"
	"bankbot/internal/retrieval"
	"bankbot/internal/secret"
	"bankbot/internal/summarizer"
	"bankbot/internal/tui"
	"bankbot/internal/vectorstore/memory"
	"bankbot/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/bankbot/config.yaml if not provided)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: bankbot [--config=config.yaml] [policy.pdf]")
		flag.PrintDefaults()
	}
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if flag.NArg() > 0 {
		cfg.Document.Path = flag.Arg(0)
	}

	lg, err := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("failed to open log: %v", err)
	}
	defer lg.Close()

	if err := run(cfg, lg); err != nil {
		lg.Error("Exiting", logrus.Fields{"error": err.Error()})
		fmt.Fprintln(os.Stderr, "bankbot:", err)
		lg.Close()
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, lg *logger.Logger) error {
	prompter := secret.NewTerminalPrompter()
	var apiKey string
	if !llm.MockRequested() {
		key, err := secret.Resolve(cfg.LLM.APIKeyEnv, prompter)
		if err != nil {
			return err
		}
		apiKey = key
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if _, err := secret.Resolve(cfg.Embedder.OpenAI.APIKeyEnv, prompter); err != nil {
			return err
		}
	}

	docs, err := loader.Load(cfg.Document.Path)
	if err != nil {
		return err
	}
	lg.Info("Document loaded", logrus.Fields{"path": cfg.Document.Path, "pages": len(docs)})

	ch, err := buildChunker(cfg.Chunker)
	if err != nil {
		return err
	}
	emb, err := buildEmbedder(cfg.Embedder)
	if err != nil {
		return err
	}
	st, err := buildStore(cfg.VectorStore)
	if err != nil {
		return err
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	index := retrieval.NewIndex(ch, emb, st, lg)
	if _, err := index.Build(context.Background(), docs); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	sum, err := buildSummarizer(cfg.Summarizer)
	if err != nil {
		return err
	}
	digest, err := sum.Summarize(joinDocuments(docs), cfg.Summarizer.MaxSentences)
	if err != nil {
		lg.Warn("Summary failed", logrus.Fields{"error": err.Error()})
		digest = ""
	}

	completer := llm.NewCompleter(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  apiKey,
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	handler := chat.NewTurnHandler(cfg.LLM.Model, chat.WithRollback(cfg.Chat.RollbackFailedTurns))

	m := tui.New(tui.Deps{
		Prompt:    chat.Prompt{System: cfg.Assistant.SystemPrompt, Welcome: cfg.Assistant.Welcome},
		Retriever: retrieval.NewRetriever(index, cfg.Retriever.TopK),
		Completer: completer,
		Handler:   handler,
		Log:       lg,
		Summary:   digest,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func buildChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "recursive", "":
		return chunker.NewRecursiveChunker(cfg.ChunkSize, cfg.ChunkOverlap), nil
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func buildEmbedder(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKeyEnv:  cfg.OpenAI.APIKeyEnv,
			Model:      cfg.OpenAI.Model,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func buildStore(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		st, err := qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant init failed: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

func buildSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}

func joinDocuments(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n")
}
