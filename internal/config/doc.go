// Package config provides configuration parsing for the statebench binary.
//
// The configuration is stored in statebench.yaml. A missing file is not an
// error: Load returns the defaults so the binary runs without any setup.
//
// # Configuration File Structure
//
//	runtime:
//	  max_flush_passes: 10000
//	  max_runs_per_flush: 0
//	  dev_mode: false
//	log:
//	  level: info
//	  format: text
//	  file: ""
//	metrics:
//	  enabled: true
//	  namespace: decantr
//	tracing:
//	  enabled: false
//	  tracer: github.com/decantr-dev/decantr
//	server:
//	  addr: localhost:7070
//	  inspector: true
//	bench:
//	  scenario: diamond
//	  iterations: 1000
//	  size: 16
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
