/*
Package transport drives the simulator's websocket protocol.

A Session owns one connection and a worker made of a reader and a writer goroutine.
Callers use two blocking entry points:

  - Command sends {command, arguments} and waits for the single reply slot.
  - Step arms the step waiter, issues a command, and waits for the "episode" push
    that the simulator sends once the requested timestep has executed.

The reader never blocks on the control loop. Episodes are queued, and pushes that
arrive while no step is outstanding are discarded with a warning by the next Step.

Replies are not correlated by request id. Only one command may be outstanding at a
time, and the reader dispatches frames strictly in arrival order, so each reply belongs
to the command that is waiting. A second concurrent caller is rejected with
ErrCommandInFlight instead of being queued.
*/
package transport
