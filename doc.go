/*
Package roadtest runs behavior-tree driving scenarios against a vehicle simulator.

A scenario is a behavior tree describing what the actors should do, a set of
criteria that must hold while it runs and a timeout in simulated seconds. The
harness drives the simulator one fixed step at a time over a websocket
session, publishes every episode to the scenario's actors, ticks the tree once
per step and records a report when the tree reaches a terminal status.

# Concept

The simulator owns time. Each step command advances the simulation by a fixed
interval and the simulator answers with the resulting episode state. The tree
only ever observes that state, so a run is reproducible given the same
simulator and step size.

The root of every scenario races the behavior against a timeout guard and the
criteria:

	root (parallel_any)
	├── behavior
	├── TimeOut
	└── Criteria (parallel_all)

# Usage

	h, err := roadtest.Connect(ctx, "ws://localhost:8080/api")
	if err != nil {
		log.Fatal(err)
	}
	defer h.Close(ctx)

	reports, err := h.RunFile(ctx, "scenarios/follow.yaml")
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range reports {
		fmt.Println(r.Scenario, r.Outcome)
	}
*/
package roadtest
