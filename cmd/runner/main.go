// Command runner executes the video pipeline once for a transcript file and
// prints the resulting video URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/drewmudry/vibecast-api/internal/config"
	"github.com/drewmudry/vibecast-api/internal/platform"
	"github.com/drewmudry/vibecast-api/processing"
	"github.com/google/uuid"
)

var (
	transcriptPath = flag.String("transcript", "", "Path to the transcript text file (- for stdin)")
	runIDFlag      = flag.String("run-id", "", "Run identifier (random when empty)")
)

func main() {
	flag.Parse()

	if *transcriptPath == "" {
		log.Fatal("-transcript is required")
	}

	text, err := readTranscript(*transcriptPath)
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	runID := *runIDFlag
	if runID == "" {
		runID = uuid.NewString()[:8]
	}

	httpClient := platform.NewHTTPClient(cfg)
	falClient := platform.NewFalClient(cfg, httpClient)
	p := processing.NewVideoPipeline(processing.NewVideoStages(cfg, falClient, httpClient))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("🎬 Run %s starting (%s)", runID, strings.Join(p.StageNames(), " -> "))
	result, err := p.Run(ctx, runID, text)
	if err != nil {
		log.Fatalf("❌ Run %s failed: %v", runID, err)
	}

	fmt.Println(result.Output)
}

func readTranscript(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("transcript %s is empty", path)
	}
	return text, nil
}
