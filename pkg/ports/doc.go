/*
Package ports defines the driven ports (interfaces) of the roadtest runner.

These interfaces decouple the scenario runner from the simulator connection and from
report storage, so runs can be driven by a fake stepper in tests and reports can be
kept in memory or in Redis.

# Key Interfaces

  - Stepper: Advances the simulator by one step and returns the resulting episode.
  - ReportStore: Persists and loads terminal run reports.
  - DistributedLocker: Serializes runs against one simulator across processes.
*/
package ports
