// Package lib provides a Go SDK to orchestrate blend optimization tasks programmatically.
//
// It is the same orchestration the blendeval CLI and HTTP API use, without
// shelling out or going through HTTP.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{OptimizerURL: "http://optimizer:8000"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Reference data and a configuration for the module.
//	client.ImportReferenceItems(ctx, []lib.ReferenceItem{{ID: 7, Name: "PB Fines"}})
//	client.SaveConfiguration(ctx, lib.SaveConfigurationOpts{
//	    Owner:        "alice",
//	    Module:       "sinter",
//	    ReferenceIDs: []int64{7},
//	})
//
//	// One task per method.
//	started, _ := client.StartTasks(ctx, "alice", "sinter")
//	p, _ := client.GetProgress(ctx, started[0].ID, &lib.ProgressOpts{Sort: "cost.total"})
//	client.StopTasks(ctx, "alice", []string{started[0].ID})
//
// # Optimizers
//
//   - [OptimizerRemote]: The real optimizer over HTTP, needs [Config].OptimizerURL.
//   - [OptimizerFake]: In-memory fake optimizer for testing.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Task or configuration does not exist.
//   - [ErrNotValid]: Invalid input.
//   - [ErrOptimizerUnreachable]: The optimizer could not be reached.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
