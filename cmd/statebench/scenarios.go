package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/decantr-dev/decantr/internal/config"
	"github.com/decantr-dev/decantr/pkg/state"
)

// workload is a built graph: step writes to it, runs reports how many
// times its effects executed.
type workload struct {
	step    func(i int)
	runs    func() int
	dispose func()
}

type scenario struct {
	name        string
	description string
	build       func(size int) workload
}

var scenarios = map[string]scenario{
	"diamond": {
		name:        "diamond",
		description: "one signal feeding size memos that join in one memo and one effect",
		build:       buildDiamond,
	},
	"chain": {
		name:        "chain",
		description: "one signal feeding a chain of size memos ending in one effect",
		build:       buildChain,
	},
	"fanout": {
		name:        "fanout",
		description: "one signal read directly by size effects",
		build:       buildFanout,
	},
	"store": {
		name:        "store",
		description: "a store of size keys with one effect per key; each write touches one key",
		build:       buildStore,
	},
	"batch": {
		name:        "batch",
		description: "size signals summed by one effect and written together in a batch",
		build:       buildBatch,
	},
}

// expectedRuns is the number of effect executions a correct runtime
// performs for the scenario, creation runs included.
func expectedRuns(name string, iterations, size int) int {
	switch name {
	case "diamond", "chain", "batch":
		return iterations + 1
	case "fanout":
		return size * (iterations + 1)
	case "store":
		return size + 1 + iterations
	}
	return -1
}

func buildDiamond(size int) workload {
	runs := 0
	return state.CreateRoot(func(dispose func()) workload {
		src := state.NewSignal(0, state.WithName[int]("src"))
		legs := make([]*state.Memo[int], size)
		for k := range legs {
			k := k
			legs[k] = state.NewMemo(func() int {
				return src.Get() + k
			}, state.WithName[int](fmt.Sprintf("leg%d", k)))
		}
		sum := state.NewMemo(func() int {
			total := 0
			for _, leg := range legs {
				total += leg.Get()
			}
			return total
		}, state.WithName[int]("sum"))
		state.NewEffect(func() state.Cleanup {
			sum.Get()
			runs++
			return nil
		}, state.EffectName("sink"))

		return workload{
			step:    func(i int) { src.Set(i + 1) },
			runs:    func() int { return runs },
			dispose: dispose,
		}
	})
}

func buildChain(size int) workload {
	runs := 0
	return state.CreateRoot(func(dispose func()) workload {
		src := state.NewSignal(0, state.WithName[int]("src"))
		last := state.NewMemo(func() int { return src.Get() })
		for k := 1; k < size; k++ {
			prev := last
			last = state.NewMemo(func() int { return prev.Get() + 1 })
		}
		tail := last
		state.NewEffect(func() state.Cleanup {
			tail.Get()
			runs++
			return nil
		}, state.EffectName("tail"))

		return workload{
			step:    func(i int) { src.Set(i + 1) },
			runs:    func() int { return runs },
			dispose: dispose,
		}
	})
}

func buildFanout(size int) workload {
	runs := 0
	return state.CreateRoot(func(dispose func()) workload {
		src := state.NewIntSignal(0, state.WithName[int]("src"))
		for k := 0; k < size; k++ {
			state.NewEffect(func() state.Cleanup {
				src.Get()
				runs++
				return nil
			}, state.EffectName(fmt.Sprintf("reader%d", k)))
		}

		return workload{
			step:    func(int) { src.Inc() },
			runs:    func() int { return runs },
			dispose: dispose,
		}
	})
}

func buildStore(size int) workload {
	runs := 0
	return state.CreateRoot(func(dispose func()) workload {
		initial := make(map[int]int, size)
		for k := 0; k < size; k++ {
			initial[k] = 0
		}
		store := state.NewStore(initial)
		for k := 0; k < size; k++ {
			k := k
			state.NewEffect(func() state.Cleanup {
				store.Get(k)
				runs++
				return nil
			}, state.EffectName(fmt.Sprintf("key%d", k)))
		}
		// Value writes to existing keys leave the key set alone.
		state.NewEffect(func() state.Cleanup {
			store.Len()
			runs++
			return nil
		}, state.EffectName("len"))

		return workload{
			step:    func(i int) { store.Set(i%size, i+1) },
			runs:    func() int { return runs },
			dispose: dispose,
		}
	})
}

func buildBatch(size int) workload {
	runs := 0
	return state.CreateRoot(func(dispose func()) workload {
		cells := make([]*state.Signal[int], size)
		for k := range cells {
			cells[k] = state.NewSignal(0)
		}
		state.NewEffect(func() state.Cleanup {
			total := 0
			for _, c := range cells {
				total += c.Get()
			}
			runs++
			return nil
		}, state.EffectName("total"))

		return workload{
			step: func(i int) {
				state.Batch(func() {
					for _, c := range cells {
						c.Set(i + 1)
					}
				})
			},
			runs:    func() int { return runs },
			dispose: dispose,
		}
	})
}

// result describes one execution of a scenario.
type result struct {
	Scenario   string        `json:"scenario"`
	Iterations int           `json:"iterations"`
	Size       int           `json:"size"`
	Runs       int           `json:"runs"`
	Expected   int           `json:"expected"`
	Nodes      int           `json:"nodes"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// OK reports whether the runtime ran exactly the expected computations.
func (r result) OK() bool {
	return r.Runs == r.Expected
}

// execute builds the named scenario on rt, writes to it iterations times and
// tears it down.
func execute(rt *state.Runtime, name string, iterations, size int) (result, error) {
	sc, ok := scenarios[name]
	if !ok {
		return result{}, fmt.Errorf("unknown scenario %q", name)
	}

	res := result{
		Scenario:   name,
		Iterations: iterations,
		Size:       size,
		Expected:   expectedRuns(name, iterations, size),
	}
	rt.Run(func() {
		w := sc.build(size)
		defer w.dispose()

		res.Nodes = rt.Size()
		start := time.Now()
		for i := 0; i < iterations; i++ {
			w.step(i)
		}
		res.Elapsed = time.Since(start)
		res.Runs = w.runs()
	})
	return res, nil
}

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the available scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.Scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", name, scenarios[name].description)
			}
		},
	}
}
