// Package config holds the small set of knobs cmd/treed exposes as flags
// for its workload subcommand.
package config

// Config collects the tunables cmd/treed's workload subcommand accepts as
// command-line flags.
type Config struct {
	// Workers is the number of goroutines the workload subcommand fans
	// out across.
	Workers int
	// OpsPerWorker is how many randomized operations each worker runs.
	OpsPerWorker int
	// Seed seeds the workload's random number generator. A fixed default
	// makes a reported failure reproducible by rerunning with the same
	// flags.
	Seed int64
}

// Default returns the configuration cmd/treed starts from before flags are
// applied.
func Default() Config {
	return Config{
		Workers:      8,
		OpsPerWorker: 200,
		Seed:         1,
	}
}
