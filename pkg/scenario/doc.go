/*
Package scenario assembles driving scenarios into evaluable trees.

Every scenario tree has the same shape:

	ParallelAny "<name>"
	├── behavior      the scenario's primary behavior
	├── TimeOut       a TimeoutGuard bounding simulated time
	└── Criteria      ParallelAll over criterion leaves (omitted when empty)

The guard turns an unresolved scenario into a terminal one. Its firing is reported
as OutcomeTimedOut, never as the behavior's own success.

Scenarios are written in Go through Scenario, or declared in YAML/JSON documents and
built with a Registry of leaf factories.
*/
package scenario
