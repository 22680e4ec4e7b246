/*
Package runner implements the scenario scheduler.

A Runner drives one scenario tree in lock step with the simulator: it requests
exactly one step, publishes the resulting episode to the data provider, advances the
simulation clock and ticks the tree once, then repeats until the root is terminal.
The terminal state is classified into an Outcome and recorded as a domain.Report.

# Usage

	r := runner.NewRunner(client,
		runner.WithLogger(logger),
		runner.WithStore(store),
		runner.WithStepDuration(0.05),
	)

	reports, err := r.RunScenario(ctx, doc.Builder(scenario.DefaultRegistry()))
*/
package runner
