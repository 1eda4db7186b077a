// Command miner is a standalone proof-of-work mining client: it accepts
// jobs from a chain node over either an HTTP push endpoint or a persistent
// Stratum session, searches for a solution, and submits it back.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/codechain-miner/goworker/internal/config"
	"github.com/codechain-miner/goworker/internal/frontend"
	httpfrontend "github.com/codechain-miner/goworker/internal/frontend/http"
	"github.com/codechain-miner/goworker/internal/frontend/stratum"
	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/pow/blake"
	"github.com/codechain-miner/goworker/internal/pow/cuckoo"
)

func main() {
	app := cli.NewApp()
	app.Name = "miner"
	app.Usage = "search proof-of-work jobs and submit solutions to a chain node"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "listen, p", Value: 8080, Usage: "HTTP transport: port to listen for jobs on"},
		cli.IntFlag{Name: "submit, s", Value: 8081, Usage: "HTTP transport: port to submit solutions to"},
		cli.BoolFlag{Name: "stratum", Usage: "use the Stratum transport instead of HTTP"},
		cli.StringFlag{Name: "stratum-host", Usage: "Stratum transport: host:port to connect to"},
		cli.StringFlag{Name: "stratum-id", Usage: "Stratum transport: authorize id"},
		cli.StringFlag{Name: "stratum-pass", Usage: "Stratum transport: authorize password"},
		cli.IntFlag{Name: "jobs, j", Value: 1, Usage: "concurrency window: number of in-flight jobs tolerated before supersession"},
		cli.IntFlag{Name: "verbosity, v", Value: 3, Usage: "log verbosity, 0 (silent) to 5 (trace)"},
		cli.StringFlag{Name: "config", Usage: "path to a TOML config file; flags override its values"},
	}
	app.Commands = []cli.Command{
		{
			Name:  "blake",
			Usage: "mine using the Blake2b solver",
			Action: func(c *cli.Context) error {
				return run(c, config.Blake)
			},
		},
		{
			Name:  "cuckoo",
			Usage: "mine using the Cuckoo Cycle solver",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "max-vertex, n", Usage: "maximum vertex count"},
				cli.IntFlag{Name: "max-edge, m", Usage: "maximum edge count"},
				cli.IntFlag{Name: "cycle-length, l", Usage: "required cycle length"},
			},
			Action: func(c *cli.Context) error {
				return run(c, config.Cuckoo)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(2)
	}
}

func run(c *cli.Context, algo config.Algorithm) error {
	cfg := config.Default()
	cfg.Algorithm = algo

	if path := c.GlobalString("config"); path != "" {
		if err := config.LoadFile(&cfg, path); err != nil {
			return err
		}
	}

	applyFlags(c, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(cfg.Verbosity), log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

	factory, err := buildFactory(cfg)
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg)
	if err != nil {
		return err
	}

	return runner.Run(factory, cfg.Jobs)
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.GlobalIsSet("listen") {
		cfg.ListenPort = uint16(c.GlobalInt("listen"))
	}
	if c.GlobalIsSet("submit") {
		cfg.SubmitPort = uint16(c.GlobalInt("submit"))
	}
	if c.GlobalBool("stratum") {
		cfg.Transport = config.Stratum
	}
	if c.GlobalIsSet("stratum-host") {
		cfg.StratumAddr = c.GlobalString("stratum-host")
	}
	if c.GlobalIsSet("stratum-id") {
		cfg.StratumID = c.GlobalString("stratum-id")
	}
	if c.GlobalIsSet("stratum-pass") {
		cfg.StratumPass = c.GlobalString("stratum-pass")
	}
	if c.GlobalIsSet("jobs") {
		cfg.Jobs = uint64(c.GlobalInt("jobs"))
	}
	if c.GlobalIsSet("verbosity") {
		cfg.Verbosity = c.GlobalInt("verbosity")
	}
	if c.IsSet("max-vertex") {
		cfg.MaxVertex = c.Int("max-vertex")
	}
	if c.IsSet("max-edge") {
		cfg.MaxEdge = c.Int("max-edge")
	}
	if c.IsSet("cycle-length") {
		cfg.CycleLength = c.Int("cycle-length")
	}
}

func buildFactory(cfg config.Config) (pow.Factory, error) {
	switch cfg.Algorithm {
	case config.Blake:
		return func() pow.Solver { return blake.New() }, nil
	case config.Cuckoo:
		cuckooCfg := cuckoo.Config{
			MaxVertex:   cfg.MaxVertex,
			MaxEdge:     cfg.MaxEdge,
			CycleLength: cfg.CycleLength,
		}
		return func() pow.Solver { return cuckoo.New(cuckooCfg) }, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
}

func buildRunner(cfg config.Config) (frontend.Runner, error) {
	switch cfg.Transport {
	case config.HTTP:
		return httpfrontend.NewRunner(httpfrontend.Config{
			ListenPort: cfg.ListenPort,
			SubmitPort: cfg.SubmitPort,
		}), nil
	case config.Stratum:
		return stratum.NewRunner(stratum.Config{
			Addr: cfg.StratumAddr,
			ID:   cfg.StratumID,
			Pass: cfg.StratumPass,
		}), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
