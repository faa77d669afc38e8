// Command sharedptr-demo runs ordinary construct, copy, move and destroy
// sequences against the sharedptr handles and prints the allocator counters.
package main

import (
	"flag"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pavanmanishd/sharedptr"
)

const configEnv = "SHAREDPTR_CONFIG"

type resource struct {
	name string
}

func (r *resource) Destroy() {
	log.Info().Str("name", r.name).Msg("[demo] resource destroyed")
}

func main() {
	path := flag.String("config", os.Getenv(configEnv), "path to the yaml config")
	flag.Parse()

	cfg, err := LoadConfig(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("[config] failed to load")
	}
	level, err := zerolog.ParseLevel(cfg.Logs.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("[config] bad log level")
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	mode, err := cfg.SyncMode()
	if err != nil {
		log.Fatal().Err(err).Msg("[config] bad sync mode")
	}
	alloc := sharedptr.NewCountingAllocator(cfg.NewAllocator(), cfg.Allocator)
	opts := []sharedptr.Option{
		sharedptr.WithSync(mode),
		sharedptr.WithAllocator(alloc),
		sharedptr.WithLogger(log.Logger),
	}
	log.Info().Stringer("sync", mode).Str("allocator", cfg.Allocator).Msg("[main] starting")

	if err = run(opts); err != nil {
		log.Fatal().Err(err).Msg("[main] demo failed")
	}
	if mode == sharedptr.Atomic {
		if err = runConcurrent(opts); err != nil {
			log.Fatal().Err(err).Msg("[main] concurrent demo failed")
		}
	}

	alloc.WritePrometheus(os.Stdout)
	if alloc.Live() != 0 {
		log.Error().Int64("live", alloc.Live()).Msg("[main] blocks leaked")
		os.Exit(1)
	}
}

func run(opts []sharedptr.Option) error {
	// copy and assign
	v := 1
	ptr, err := sharedptr.New(&v, opts...)
	if err != nil {
		return err
	}
	*ptr.Deref() = 3
	copy1 := ptr.Clone()
	copy1.Assign(ptr)
	log.Info().Int("value", *ptr.Deref()).Int64("use_count", ptr.UseCount()).Msg("[demo] copy")
	copy1.Reset()
	ptr.Reset()

	// move
	ten := 10
	p, err := sharedptr.New(&ten, opts...)
	if err != nil {
		return err
	}
	q := p.Move()
	log.Info().Int64("from", p.UseCount()).Int64("to", q.UseCount()).Msg("[demo] move")
	q.Reset()

	// weak outliving its owner
	r, err := sharedptr.MakeShared(func(r *resource) error {
		r.name = "inline"
		return nil
	}, opts...)
	if err != nil {
		return err
	}
	w := r.Weak()
	r.Reset()
	log.Info().Bool("expired", w.Expired()).Bool("lock_empty", w.Lock().Empty()).Msg("[demo] weak")
	w.Reset()
	return nil
}

func runConcurrent(opts []sharedptr.Option) error {
	p, err := sharedptr.MakeSharedValue(resource{name: "shared"}, opts...)
	if err != nil {
		return err
	}
	w := p.Weak()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		own := p.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer own.Reset()
			for j := 0; j < 1000; j++ {
				c := own.Clone()
				c.Reset()
			}
		}()
	}
	p.Reset()
	wg.Wait()

	log.Info().Bool("expired", w.Expired()).Msg("[demo] concurrent")
	w.Reset()
	return nil
}
