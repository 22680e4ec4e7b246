/*
Package behavior is a tick-driven behavior tree engine.

A tree is evaluated once per simulated step. Every node follows the same contract:
if it is not already Running it is initialised, then updated, and when the update
result is not Running it is terminated exactly once with that result. A Running node
that stops being needed (a sibling won a race, an ancestor was interrupted) is
stopped with StatusInvalid, which also terminates it exactly once.

Leaves wrap a Behavior. Composites aggregate their children under a Policy:

  - Sequence ticks children in order and resumes at the running child.
  - ParallelAny ticks every child on every tick; one Success wins.
  - ParallelAll ticks every child on every tick; one Failure loses.

A parallel child that finished on an earlier tick is ticked again, which starts a
new activation of it.

The engine is single-threaded. Nodes must not block.
*/
package behavior
