package domain

import "time"

// Conversation links exactly two participants. Participant order has no
// meaning beyond creation order.
type Conversation struct {
	ID           int64     `json:"id"`
	ParticipantA string    `json:"participantA"`
	ParticipantB string    `json:"participantB"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Participants is the resolved member set of a conversation, used to
// scope fan-out.
type Participants struct {
	A string
	B string
}

func (p Participants) Contains(userID string) bool {
	return p.A == userID || p.B == userID
}

// Other returns the peer of userID. Callers must check Contains first.
func (p Participants) Other(userID string) string {
	if p.A == userID {
		return p.B
	}
	return p.A
}
