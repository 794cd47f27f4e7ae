// timerctl 在命令行里操作持久化的倒计时器。
// 每次调用都会从存储恢复并快进，所以计时在进程之间继续。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmhodges/clock"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/database"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/frame"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/logger"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/storage"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

const usage = `usage: timerctl [flags] <command>

commands:
  status        show the timer
  start         start from the full duration
  pause         pause a running timer
  resume        resume a paused timer
  reset         back to idle with the full duration
  config N      set the duration to N seconds (idle only)
  watch         follow a running timer until it stops
  keys          list saved timer keys (file, sqlite, postgres)

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 2
	}

	fs := flag.NewFlagSet("timerctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store driver: memory, file, sqlite, postgres, pgx")
	fs.StringVar(&cfg.StorePath, "path", cfg.StorePath, "file store directory or sqlite database")
	fs.StringVar(&cfg.TimerKey, "key", cfg.TimerKey, "timer key")
	verbose := fs.Bool("v", false, "log engine events to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	env := "prod"
	if *verbose {
		env = "dev"
	}
	log := logger.New(io.Discard, env)
	if *verbose {
		log = logger.New(stderr, env)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := database.OpenStore(ctx, cfg)
	cancel()
	if err != nil {
		fmt.Fprintln(stderr, "store:", err)
		return 1
	}
	defer closeStore()

	if fs.Arg(0) == "keys" {
		return listKeys(store, stdout, stderr, cfg.StoreDriver)
	}

	clk := clock.New()
	engine := timer.New(store,
		timer.WithClock(clk),
		timer.WithFrames(frame.NewTicker(clk, cfg.FrameInterval)),
		timer.WithKey(cfg.TimerKey),
		timer.WithDefaultSeconds(cfg.DefaultSeconds),
		timer.WithStoreTimeout(cfg.StoreTimeout),
		timer.WithLogger(log),
	)
	defer engine.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "status":
	case "start":
		err = engine.Start()
	case "pause":
		err = engine.Pause()
	case "resume":
		err = engine.Resume()
	case "reset":
		err = engine.Reset()
	case "config":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, "config needs exactly one argument")
			return 2
		}
		err = engine.ReconfigureInput(rest[0])
	case "watch":
		watch(engine, stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printView(stdout, engine.View())
		return 1
	}
	printView(stdout, engine.View())
	if perr := engine.PersistErr(); perr != nil {
		fmt.Fprintln(stderr, "warning: state not saved:", perr)
	}
	return 0
}

// listKeys 不创建引擎，只读存储里的键
func listKeys(store timer.Store, stdout, stderr io.Writer, driver string) int {
	kl, ok := store.(storage.KeyLister)
	if !ok {
		fmt.Fprintf(stderr, "store driver %s cannot list keys\n", driver)
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	keys, err := kl.Keys(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	for _, k := range keys {
		fmt.Fprintln(stdout, k)
	}
	return 0
}

func printView(w io.Writer, v timer.View) {
	start := "visible"
	if v.StartHiddenForever {
		start = "hidden"
	}
	fmt.Fprintf(w, "%-9s %10s  (%ds, start %s)\n", v.Status, v.Display, v.ConfigSeconds, start)
}

// watch 每 100ms 打印一次，直到离开 running 或收到中断
func watch(engine *timer.Engine, w io.Writer) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		v := engine.View()
		fmt.Fprintf(w, "\r%-9s %10s", v.Status, v.Display)
		if v.Status != timer.StatusRunning {
			fmt.Fprintln(w)
			return
		}
		select {
		case <-t.C:
		case <-sig:
			fmt.Fprintln(w)
			return
		}
	}
}
