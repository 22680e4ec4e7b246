/*
Package domain contains the core models shared by every roadtest component.

It defines the values that cross package boundaries: the wire shape of a simulator
step notification, node statuses, run outcomes and the terminal Report of a scenario
run. This package is kept pure and free of I/O so that transports, stores and
presentation adapters can depend on it without pulling each other in.

# Key Entities

  - Status: The result of ticking a behavior node (Invalid, Running, Success, Failure).
  - EpisodeState: The per-step snapshot pushed by the simulator (actors and game time).
  - GameTime: The simulator's clock reading (current time and frame).
  - Report: The terminal record of one scenario run, including criteria verdicts.
*/
package domain
