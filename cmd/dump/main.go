// Command dump runs the offline SenseVoice recognizer over a WAV fixture
// and prints the result as plain text, JSON, or SRT — a debugging tool for
// inspecting a single recognizer's output without live microphone capture.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"asrstream/internal/asr"
	"asrstream/internal/audio"
	"asrstream/internal/config"
	"asrstream/internal/frontend"
	"asrstream/internal/onnxrt"
	"asrstream/internal/sensevoice"
	"asrstream/internal/token"
)

func main() {
	modelDir := flag.String("models", "", "directory containing the six required model files")
	onnxLib := flag.String("onnx-lib", "", "path to the ONNX Runtime shared library")
	wavPath := flag.String("wav", "", "WAV fixture to transcribe")
	language := flag.String("language", "auto", "SenseVoice output language")
	format := flag.String("format", "text", "output format: text, json, or srt")
	flag.Parse()

	if *modelDir == "" || *wavPath == "" {
		log.Fatal("dump: -models and -wav are required")
	}

	cfg := config.Config{ModelDir: *modelDir, OnnxLibPath: *onnxLib, Language: *language}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("dump: %v", err)
	}

	if cfg.OnnxLibPath != "" {
		onnxrt.SetSharedLibraryPath(cfg.OnnxLibPath)
	}
	if err := onnxrt.Init(); err != nil {
		log.Fatalf("dump: init onnx runtime: %v", err)
	}
	defer onnxrt.Close()

	samples, sourceRate, err := audio.ReadWavFile(*wavPath)
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	samples = audio.Resample(samples, sourceRate)

	cmvn, err := frontend.LoadCMVN(cfg.Path(config.SenseVoiceCMVNFile))
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	tokens, err := token.ReadTokens(cfg.Path(config.SenseVoiceTokens))
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	lang, _ := sensevoice.ParseLanguage(cfg.Language)
	recognizer, err := sensevoice.NewRecognizer(cfg.Path(config.SenseVoiceModel), cmvn, tokens, lang)
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	defer recognizer.Close()

	start := time.Now()
	f64 := make([]float64, len(samples))
	for i, v := range samples {
		f64[i] = float64(v)
	}
	text, err := recognizer.Recognize(f64)
	if err != nil {
		log.Fatalf("dump: %v", err)
	}
	elapsed := time.Since(start)

	result := &asr.Result{
		Text:     text,
		Duration: elapsed.Seconds(),
		Segments: []asr.Segment{{
			Kind:      "Offline",
			Text:      text,
			StartTime: 0,
			EndTime:   float64(len(samples)) / float64(audio.TargetSampleRate),
		}},
	}

	switch *format {
	case "json":
		out, err := result.FormatAsJSON()
		if err != nil {
			log.Fatalf("dump: %v", err)
		}
		fmt.Println(out)
	case "srt":
		fmt.Println(result.FormatAsSRT())
	default:
		fmt.Println(result.FormatAsText())
	}
}
