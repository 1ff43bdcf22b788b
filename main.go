package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/wyn-voice/config"
	"github.com/mrsingh-rishi/wyn-voice/device"
	"github.com/mrsingh-rishi/wyn-voice/llm"
	"github.com/mrsingh-rishi/wyn-voice/pipeline"
	"github.com/mrsingh-rishi/wyn-voice/server"
	"github.com/mrsingh-rishi/wyn-voice/stt"
	"github.com/mrsingh-rishi/wyn-voice/tts"
	"github.com/mrsingh-rishi/wyn-voice/workers"
)

const usage = `Usage: wyn-voice [flags] <command>

Commands:
  chat          type prompts, print replies (add -speak to hear them)
  talk          spoken conversation loop until Ctrl-C or -turns
  say <text>    synthesize text and play it
  listen        record one question and print the reply
  serve         run the HTTP server

Flags:
`

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	flags := flag.NewFlagSet("wyn-voice", flag.ExitOnError)
	speak := flags.Bool("speak", false, "speak replies aloud (chat, listen)")
	turns := flags.Int("turns", 0, "stop talk after this many turns (0 = unlimited)")
	addr := flags.String("addr", "", "listen address for serve (default SERVER_ADDR)")
	flags.Usage = func() {
		fmt.Fprint(flags.Output(), usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	bot, err := llm.New(cfg.OpenAIAPIKey,
		llm.WithCompleter(client),
		llm.WithModel(cfg.ChatModel),
		llm.WithInstructions(cfg.SystemPrompt),
		llm.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create chat bot: %v", err)
	}

	processor, err := newProcessor(cfg, client, bot, logger)
	if err != nil {
		log.Fatalf("Failed to create audio pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd := flags.Arg(0); cmd {
	case "chat":
		err = runChat(ctx, bot, processor, *speak, logger)
	case "talk":
		err = runTalk(ctx, processor, *turns, logger)
	case "say":
		text := strings.TrimSpace(strings.Join(flags.Args()[1:], " "))
		if text == "" {
			log.Fatal("say needs some text")
		}
		_, err = processor.Speak(ctx, text)
	case "listen":
		err = runListen(ctx, processor, *speak)
	case "serve":
		err = runServe(ctx, cfg, bot, processor, logger)
	default:
		flags.Usage()
		log.Fatalf("unknown command %q", cmd)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

func newProcessor(cfg config.Config, client *openai.Client, bot *llm.ChatBot, logger *log.Logger) (*pipeline.AudioProcessor, error) {
	var transcriber stt.Transcriber
	switch cfg.STTProvider {
	case config.ProviderDeepgram:
		transcriber = stt.NewDeepgramClient(cfg.DeepgramAPIKey, logger)
	default:
		transcriber = stt.NewOpenAITranscriber(client, cfg.TranscriptionModel, logger)
	}

	var synthesizer tts.Synthesizer
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		el, err := tts.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID, logger)
		if err != nil {
			return nil, err
		}
		synthesizer = el
	default:
		synthesizer = tts.NewOpenAISynthesizer(client, cfg.TTSModel, cfg.TTSVoice, logger)
	}

	return pipeline.NewAudioProcessor(bot,
		pipeline.WithRecorder(device.NewRecorder(logger)),
		pipeline.WithTranscriber(transcriber),
		pipeline.WithSynthesizer(synthesizer),
		pipeline.WithPlayer(device.NewSpeaker(logger)),
		pipeline.WithRecordingFormat(cfg.RecordDuration, cfg.SampleRate, cfg.Channels),
		pipeline.WithOutputPath(cfg.OutputPath),
		pipeline.WithLogger(logger),
	)
}

func runChat(ctx context.Context, bot *llm.ChatBot, processor *pipeline.AudioProcessor, speak bool, logger *log.Logger) error {
	var replies chan string
	var speaker *workers.SpeechWorker
	if speak {
		replies = make(chan string, 4)
		var err error
		speaker, err = workers.NewSpeechWorker(processor, replies, logger)
		if err != nil {
			return err
		}
		speaker.Start()
		defer func() {
			close(replies)
			select {
			case <-speaker.Done():
			case <-ctx.Done():
				speaker.Stop()
			}
		}()
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err := bot.GenerateResponse(ctx, line)
		if err != nil {
			logger.Printf("Error: %v", err)
			continue
		}
		fmt.Println(reply)
		if speak {
			select {
			case replies <- reply:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func runTalk(ctx context.Context, processor *pipeline.AudioProcessor, turns int, logger *log.Logger) error {
	worker, err := workers.NewConversationWorker(processor, turns, logger)
	if err != nil {
		return err
	}
	worker.Start()
	defer worker.Stop()

	var last error
	errCh := worker.Errors
	for {
		select {
		case <-ctx.Done():
			worker.Stop()
			<-worker.Done()
			return nil
		case turn, ok := <-worker.Results:
			if !ok {
				<-worker.Done()
				return last
			}
			fmt.Printf("You: %s\nBot: %s\n", turn.Transcript, turn.Reply)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			logger.Printf("Error: %v", err)
			last = err
		}
	}
}

func runListen(ctx context.Context, processor *pipeline.AudioProcessor, speak bool) error {
	reply, err := processor.ProcessAudioAndGenerateResponse(ctx)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	if speak {
		_, err = processor.Speak(ctx, reply)
	}
	return err
}

func runServe(ctx context.Context, cfg config.Config, bot *llm.ChatBot, processor *pipeline.AudioProcessor, logger *log.Logger) error {
	srv, err := server.New(bot, processor, filepath.Dir(cfg.OutputPath), logger)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()
	return srv.Listen(cfg.ServerAddr)
}
