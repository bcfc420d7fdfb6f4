// Command listen runs the ASR pipeline against the default microphone and
// prints Subtitle events to stdout as they're emitted, without going
// through the HTTP control surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"asrstream/internal/config"
	"asrstream/internal/frontend"
	"asrstream/internal/onnxrt"
	"asrstream/internal/orchestrator"
	"asrstream/internal/paraformer"
	"asrstream/internal/sensevoice"
	"asrstream/internal/token"
	"asrstream/internal/vad"
)

func main() {
	modelDir := flag.String("models", "", "directory containing the six required model files")
	onnxLib := flag.String("onnx-lib", "", "path to the ONNX Runtime shared library")
	language := flag.String("language", "auto", "SenseVoice output language")
	flag.Parse()

	if *modelDir == "" {
		log.Fatal("listen: -models is required")
	}

	cfg := config.Config{ModelDir: *modelDir, OnnxLibPath: *onnxLib, Language: *language}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("listen: %v", err)
	}

	if cfg.OnnxLibPath != "" {
		onnxrt.SetSharedLibraryPath(cfg.OnnxLibPath)
	}
	if err := onnxrt.Init(); err != nil {
		log.Fatalf("listen: init onnx runtime: %v", err)
	}
	defer onnxrt.Close()

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	if err := engine.StartCapture(nil, 16000); err != nil {
		log.Fatalf("listen: start capture: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		engine.Stop()
		cancel()
	}()

	go func() {
		for sub := range engine.Subtitles {
			fmt.Printf("[%s] %s\n", sub.Kind, sub.Text)
		}
	}()

	if err := engine.Run(ctx); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func buildEngine(cfg config.Config) (*orchestrator.Engine, error) {
	vadCMVN, err := frontend.LoadCMVN(cfg.Path(config.VADCMVNFile))
	if err != nil {
		return nil, err
	}
	paraformerCMVN, err := frontend.LoadCMVN(cfg.Path(config.ParaformerCMVNFile))
	if err != nil {
		return nil, err
	}
	senseVoiceCMVN, err := frontend.LoadCMVN(cfg.Path(config.SenseVoiceCMVNFile))
	if err != nil {
		return nil, err
	}

	vadModel, err := vad.NewRecognizer(cfg.Path(config.VADModel), vadCMVN)
	if err != nil {
		return nil, err
	}

	paraformerTokens, err := token.ReadTokens(cfg.Path(config.ParaformerTokens))
	if err != nil {
		return nil, err
	}
	pf, err := paraformer.NewRecognizer(cfg.Path(config.ParaformerEncoder), cfg.Path(config.ParaformerDecoder), paraformerCMVN, paraformerTokens)
	if err != nil {
		return nil, err
	}

	senseVoiceTokens, err := token.ReadTokens(cfg.Path(config.SenseVoiceTokens))
	if err != nil {
		return nil, err
	}
	lang, _ := sensevoice.ParseLanguage(cfg.Language)
	sv, err := sensevoice.NewRecognizer(cfg.Path(config.SenseVoiceModel), senseVoiceCMVN, senseVoiceTokens, lang)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(cfg, vadModel, pf, sv, nil), nil
}
