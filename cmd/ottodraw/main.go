// OttoDraw is a guided drawing tutor: name an animal and it walks you
// through drawing it, one shape at a time.
//
// Usage:
//
//	ottodraw [-mode color|outline] [-voice] [-speech=false] [-log-level verbose]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	stdlog "log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/config"
	"github.com/hammamikhairi/ottodraw/internal/conversation"
	"github.com/hammamikhairi/ottodraw/internal/display"
	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/engine"
	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
	"github.com/hammamikhairi/ottodraw/internal/resolver"
	"github.com/hammamikhairi/ottodraw/internal/speech"
	"github.com/hammamikhairi/ottodraw/internal/storage"
	"github.com/hammamikhairi/ottodraw/internal/timer"
	"github.com/hammamikhairi/ottodraw/internal/wakeword"
)

// exportSize is the pixel size of exported step images.
const exportSize = 512

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg := config.Default()
	if err := cfg.FromEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	// Logs go to a file by default so the UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		f, err := logger.OpenFile(cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	// Third-party libraries (the whisper transcriber) log through the
	// standard logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel, logOut)

	cat, err := loadCatalog(cfg.Catalog, log.Named("catalog"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	log.Info("catalog: %d animals", cat.Len())

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	res := resolver.New(cat,
		resolver.WithRandom(rand.New(rand.NewSource(seed))),
		resolver.WithCategories(catalog.DefaultCategories()),
		resolver.WithMaxDistance(cfg.MaxDistance),
		resolver.WithFallbackSize(cfg.FallbackSize),
		resolver.WithLogger(log.Named("resolver")),
	)
	rend := render.New(render.Options{Mode: cfg.Mode, Scheme: cfg.Scheme})
	eng := engine.New(cat, res, rend, log.Named("engine"),
		engine.WithAutoAcceptSuggestion(cfg.AutoAcceptSuggestion),
		engine.WithAutoAcceptFallback(cfg.AutoAcceptFallback),
		engine.WithHistory(storage.NewMemoryStore(log.Named("history"))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui := display.NewUI(eng)
	textNotifier := conversation.NewCLINotifier(log, ui.Printf)
	var notifier domain.Notifier = textNotifier

	var mouth *speech.Mouth
	if cfg.Speech {
		mouth = buildMouth(cfg, log.Named("speech"))
		if mouth != nil {
			mouth.Start(ctx)
			mouth.Prefetch(ctx, speech.Prefetchable()...)
			notifier = speech.NewSpeakingNotifier(textNotifier, mouth)
		}
	}

	var ear *speech.Ear
	if cfg.VoiceInput {
		if _, err := os.Stat(cfg.WhisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", cfg.WhisperModel)
			return 1
		}
		rec, err := speech.NewWhisperRecorder(cfg.WhisperBin, cfg.WhisperModel, ".ottodraw-stt", log.Named("ear"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		opts := []speech.EarOption{speech.WithChunkDuration(time.Duration(cfg.RecordSecs) * time.Second)}
		if mouth != nil {
			opts = append(opts, speech.WithVoice(mouth))
		}
		wcfg := wakeword.Config{
			WakewordModel:  cfg.WakeModel,
			MelspecModel:   cfg.MelspecModel,
			EmbeddingModel: cfg.EmbeddingModel,
			OnnxLib:        cfg.OnnxLib,
			Threshold:      cfg.WakeThreshold,
		}
		detect := cfg.WakeModel != ""
		if detect {
			if err := wcfg.Check(); err != nil {
				log.Warn("wakeword detector disabled, using the spoken wake phrase: %v", err)
				detect = false
			} else {
				opts = append(opts, speech.WithExternalWake())
			}
		}
		ear = speech.NewEar(rec, log.Named("ear"), opts...)
		go ear.Run(ctx)
		if detect {
			startDetector(ctx, wcfg, ear, mouth, log.Named("wakeword"))
		}
		log.Info("voice input enabled (bin=%s, model=%s)", cfg.WhisperBin, cfg.WhisperModel)
	}

	if cfg.NudgeAfter > 0 {
		w := timer.NewWatcher(eng, notifier, log.Named("watcher"),
			timer.WithIdleAfter(cfg.NudgeAfter),
			timer.WithMessage(func(domain.SessionState, time.Duration) string { return speech.LineNudge() }),
		)
		go w.Run(ctx)
	}

	var voice domain.SpeechProvider = speech.NewNoOp(log.Named("speech"))
	if ear != nil {
		voice = speech.NewProvider(ear, mouth)
	}

	app := &cliApp{
		engine: eng,
		parser: conversation.NewKeywordParser(log),
		mouth:  mouth,
		voice:  voice,
		log:    log,
		ui:     ui,
		cfg:    cfg,
	}

	fmt.Println(display.RenderBanner())
	if ear != nil {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON. Say \"Hey Otto\" to talk, or type."))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	return 0
}

func loadCatalog(path string, log *logger.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(catalog.WithLogger(log))
	}
	return catalog.LoadFile(path, catalog.WithLogger(log))
}

// startDetector runs the ONNX wake word detector, paused while the
// tutor is talking so it does not hear itself.
func startDetector(ctx context.Context, wcfg wakeword.Config, ear *speech.Ear, mouth *speech.Mouth, log *logger.Logger) {
	det := wakeword.New(wcfg, ear.Wake, log)
	if mouth != nil {
		go det.PauseWhile(ctx, func() bool { return mouth.IsSpeaking() || mouth.QueueLen() > 0 }, 100*time.Millisecond)
	}
	go func() {
		if err := det.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("detector stopped: %v", err)
		}
	}()
}

// buildMouth returns nil when no synthesizer or audio device is available.
func buildMouth(cfg config.Config, log *logger.Logger) *speech.Mouth {
	synth, err := speech.NewCommandSynthesizer(cfg.TTSBin, cfg.Voice, log)
	if err != nil {
		log.Warn("speech disabled: %v", err)
		return nil
	}
	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Warn("speech disabled: %v", err)
		return nil
	}
	cache := speech.NewAudioCache(synth.Voice(), cfg.CacheDir, cfg.DiskCache, log)
	log.Info("speech enabled (tts=%s, voice=%s)", cfg.TTSBin, synth.Voice())
	return speech.NewMouth(synth, player, log, speech.WithCache(cache))
}

// screen is the part of the terminal UI the REPL writes to.
type screen interface {
	PrintChat(text string)
	PrintStep(text string)
	PrintInstruction(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	PrintVoice(text string)
	PrintCanvas(canvas string)
	Println(a ...interface{})
	InputChan() <-chan string
	QuitChan() <-chan struct{}
}

var _ screen = (*display.UI)(nil)

type cliApp struct {
	engine *engine.Engine
	parser domain.CommandParser
	mouth  *speech.Mouth // nil when speech is off
	voice  domain.SpeechProvider
	log    *logger.Logger
	ui     screen
	cfg    config.Config
}

// say prints a tutor line and speaks it.
func (a *cliApp) say(text string, p speech.Priority) {
	a.ui.PrintChat(text)
	if a.mouth != nil {
		a.mouth.Say(text, p)
	}
}

func (a *cliApp) run(ctx context.Context) {
	a.say(speech.LineWelcome(), speech.PriorityNormal)
	a.showAnimals()

	voiceCh := make(chan string)
	go a.listen(ctx, voiceCh)
	uiCh := a.ui.InputChan()

	for {
		var input string
		select {
		case <-ctx.Done():
			return
		case <-a.ui.QuitChan():
			return
		case v, ok := <-uiCh:
			if !ok {
				return
			}
			input = v
		case input = <-voiceCh:
			a.ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd, err := a.parser.Parse(ctx, input, a.engine.State())
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}
		a.log.Debug("command: %s (animal=%q)", cmd.Type, cmd.Animal)
		if !a.handle(ctx, *cmd) {
			return
		}
	}
}

// listen forwards heard commands until ctx ends or voice input is off.
func (a *cliApp) listen(ctx context.Context, out chan<- string) {
	for {
		text, err := a.voice.Listen(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrNotImplemented) && ctx.Err() == nil {
				a.log.Error("voice: %v", err)
			}
			return
		}
		select {
		case out <- text:
		case <-ctx.Done():
			return
		}
	}
}

// handle executes one command and reports whether the loop should go on.
func (a *cliApp) handle(ctx context.Context, cmd domain.Command) bool {
	if a.mouth != nil && cmd.Type != domain.CommandUnknown {
		a.mouth.Interrupt()
	}

	switch cmd.Type {
	case domain.CommandHelp:
		a.showHelp()
	case domain.CommandList:
		a.showAnimals()
	case domain.CommandHistory:
		a.showHistory(ctx)
	case domain.CommandQuit:
		a.say(speech.LineBye(), speech.PriorityHigh)
		// Give the goodbye a moment to start.
		time.Sleep(300 * time.Millisecond)
		return false
	case domain.CommandRepeat:
		a.repeat(ctx)
	case domain.CommandUnknown:
		a.say(speech.LineUnknown(cmd.Animal), speech.PriorityLow)
	case domain.CommandDrawAnimal:
		a.draw(ctx, cmd)
	default:
		a.move(ctx, cmd)
	}
	return true
}

func (a *cliApp) draw(ctx context.Context, cmd domain.Command) {
	out, err := a.engine.Apply(cmd)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		a.say(speech.LineUnknown(""), speech.PriorityLow)
		return
	case errors.Is(err, domain.ErrNotFound) && out.Result == nil:
		n := 0
		fmt.Sscanf(cmd.Animal, "%d", &n)
		a.say(speech.LineInvalidPick(n), speech.PriorityNormal)
		return
	case errors.Is(err, domain.ErrNotFound):
		a.say(speech.LineFallback(cmd.Animal, "", nil), speech.PriorityNormal)
		return
	case err != nil:
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	r := out.Result
	if out.Started {
		if r != nil && r.Kind == resolver.KindSuggestion {
			a.say(speech.LineSuggestion(r.Input, r.Suggestion), speech.PriorityNormal)
		}
		st := out.State
		a.say(speech.LineStart(st.Animal.Name, st.Animal.StepCount(), st.Animal.Difficulty), speech.PriorityNormal)
		a.showStep(ctx)
		return
	}

	switch r.Kind {
	case resolver.KindSuggestion:
		a.say(speech.LineConfirmSuggestion(r.Input, r.Suggestion), speech.PriorityNormal)
	case resolver.KindFallback:
		a.say(speech.LineFallback(r.Input, r.Category, names(out.Offered)), speech.PriorityNormal)
		a.ui.PrintHint(fmt.Sprintf("  Type 1-%d to pick one, or name another animal.", len(out.Offered)))
	}
}

func (a *cliApp) move(ctx context.Context, cmd domain.Command) {
	before := a.engine.State()
	out, err := a.engine.Apply(cmd)
	if errors.Is(err, domain.ErrNoAnimal) {
		a.say(speech.LineNoAnimal(), speech.PriorityNormal)
		return
	}
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}
	st := out.State

	switch cmd.Type {
	case domain.CommandHome:
		a.say(speech.LineHome(), speech.PriorityNormal)
	case domain.CommandRedraw:
		a.say(speech.LineRedraw(st.Animal.Name), speech.PriorityNormal)
		a.showStep(ctx)
	case domain.CommandBack:
		if st.StepIndex == before.StepIndex {
			a.say(speech.LineFirstStep(), speech.PriorityNormal)
			return
		}
		a.showStep(ctx)
	case domain.CommandNext, domain.CommandDone:
		if st.Phase == domain.PhaseCompleted {
			if before.Phase == domain.PhaseDrawing {
				a.showCanvas()
			}
			a.say(speech.LineFinished(st.Animal.Name, names(a.engine.Related())), speech.PriorityHigh)
			return
		}
		a.showStep(ctx)
	}
}

func (a *cliApp) repeat(ctx context.Context) {
	if a.engine.State().Phase == domain.PhaseDrawing {
		a.showStep(ctx)
		return
	}
	if a.mouth == nil || a.mouth.LastSpoken() == "" {
		a.say(speech.LineNothingToRepeat(), speech.PriorityLow)
		return
	}
	a.say(a.mouth.LastSpoken(), speech.PriorityNormal)
}

// showStep prints, draws and speaks the current step, then prefetches
// the next one.
func (a *cliApp) showStep(ctx context.Context) {
	st := a.engine.State()
	step, ok := st.CurrentStep()
	if !ok {
		return
	}
	total := st.Animal.StepCount()

	a.ui.PrintStep(fmt.Sprintf("Step %d/%d", st.StepIndex+1, total))
	a.ui.PrintInstruction(step.Instruction)
	a.showCanvas()
	a.export(st)

	if a.mouth != nil {
		a.mouth.Say(speech.LineStep(st.StepIndex+1, total, step.Instruction), speech.PriorityNormal)
		if next := st.StepIndex + 1; next < total {
			a.mouth.Prefetch(ctx, speech.LineStep(next+1, total, st.Animal.Steps[next].Instruction))
		}
	}
}

func (a *cliApp) showCanvas() {
	cols := a.cfg.CanvasWidth
	if cols <= 0 {
		return
	}
	cols = min(cols, display.TermWidth()-4)
	if p, ok := a.engine.Program(cols, cols); ok {
		a.ui.PrintCanvas(display.RenderCanvas(p, cols))
	}
}

// export writes the current step as SVG and PNG when an export dir is set.
func (a *cliApp) export(st domain.SessionState) {
	if a.cfg.ExportDir == "" {
		return
	}
	p, ok := a.engine.Program(exportSize, exportSize)
	if !ok {
		return
	}
	if err := os.MkdirAll(a.cfg.ExportDir, 0o755); err != nil {
		a.log.Error("export: %v", err)
		return
	}
	base := filepath.Join(a.cfg.ExportDir, fmt.Sprintf("%s-step%02d", st.Animal.Key(), st.StepIndex+1))

	if err := os.WriteFile(base+".svg", []byte(render.EncodeSVG(p)), 0o644); err != nil {
		a.log.Error("export: %v", err)
	}
	f, err := os.Create(base + ".png")
	if err != nil {
		a.log.Error("export: %v", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, render.Rasterize(p)); err != nil {
		a.log.Error("export: %v", err)
	}
}

func (a *cliApp) showAnimals() {
	cat := a.engine.Catalog()
	a.ui.PrintStep("Animals I can draw:")
	for _, d := range cat.All() {
		a.ui.PrintInstruction(fmt.Sprintf("  %-10s tier %d, %d steps", d.Name, d.TierOr(0), d.StepCount()))
	}
	a.ui.Println("")
	a.say(speech.LineAnimalList(cat.AllNames()), speech.PriorityLow)
}

func (a *cliApp) showHistory(ctx context.Context) {
	list, err := a.engine.History(ctx)
	if err != nil {
		a.log.Error("history: %v", err)
		return
	}
	finished := 0
	if len(list) > 0 {
		a.ui.PrintStep("This session:")
	}
	for _, r := range list {
		status := fmt.Sprintf("step %d of %d", r.StepsDone, r.TotalSteps)
		if r.Finished {
			finished++
			status = "finished"
		}
		a.ui.PrintInstruction(fmt.Sprintf("  %s  %-10s %s", r.StartedAt.Format("15:04"), r.Animal, status))
	}
	a.ui.Println("")
	a.say(speech.LineHistory(finished, len(list)), speech.PriorityLow)
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	a.ui.PrintInstruction("  <animal>           Start drawing (\"cat\", \"I want to draw a kat\")")
	a.ui.PrintInstruction("  1, 2, 3            Pick one of the offered animals")
	a.ui.PrintInstruction("  next / done        Go to the next step")
	a.ui.PrintInstruction("  back               Go to the previous step")
	a.ui.PrintInstruction("  redraw / again     Start the animal over")
	a.ui.PrintInstruction("  repeat / what      Show the current step again")
	a.ui.PrintInstruction("  home / menu        Choose another animal")
	a.ui.PrintInstruction("  list               Show every animal")
	a.ui.PrintInstruction("  history            Show what you drew this session")
	a.ui.PrintInstruction("  help               Show this message")
	a.ui.PrintInstruction("  quit / exit        Leave")
	a.ui.Println("")
	if a.mouth != nil {
		a.mouth.Say(speech.LineHelp(), speech.PriorityLow)
	}
}

func names(ds []*domain.AnimalDrawing) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}
