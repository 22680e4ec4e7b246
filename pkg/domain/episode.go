package domain

// EpisodeType is the result type carried by step notifications.
const EpisodeType = "episode"

// GameTime is the simulator's clock reading at the end of a step.
type GameTime struct {
	CurrentTime  float64 `json:"current_time"`
	CurrentFrame int64   `json:"current_frame"`
}

// Transform is an actor pose. Rotation holds euler angles in degrees.
type Transform struct {
	Position Vector `json:"position"`
	Rotation Vector `json:"rotation"`
}

// ActorState is the per-actor part of a step notification.
// AgentID is empty when the simulator could not resolve the actor's uid.
type ActorState struct {
	AgentID         string    `json:"agent_id,omitempty"`
	Transform       Transform `json:"transform"`
	Velocity        Vector    `json:"velocity"`
	AngularVelocity Vector    `json:"angular_velocity"`
}

// Speed returns the magnitude of the actor's velocity.
func (a ActorState) Speed() float64 {
	return a.Velocity.Magnitude()
}

// EpisodeState is the snapshot pushed by the simulator after each executed step.
type EpisodeState struct {
	Type     string       `json:"type"`
	NPCs     []ActorState `json:"npcs_state"`
	Ego      *ActorState  `json:"ego_state,omitempty"`
	GameTime GameTime     `json:"game_time"`
}
