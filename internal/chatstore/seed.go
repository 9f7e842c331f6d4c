package chatstore

import "time"

func seedTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// demoLandlordConversations builds fresh copies of the two landlord threads
// every new profile starts with.
func demoLandlordConversations() []StoredConversation {
	return []StoredConversation{
		{
			ParticipantID: "landlord-carlos-lopez",
			Type:          TypeLandlord,
			UnreadCount:   0,
			Messages: []ChatMessage{
				{
					ID:        "lm-1",
					FromMe:    true,
					Text:      "Hola, estoy interesado en la habitación en Romareda. ¿Sigue disponible?",
					Timestamp: seedTime("2026-02-15T10:30:00Z"),
				},
				{
					ID:        "lm-2",
					FromMe:    false,
					Text:      "Hola, sí, la habitación sigue disponible. El precio es 450€/mes con gastos incluidos. ¿Te gustaría hacer una visita?",
					Timestamp: seedTime("2026-02-15T11:15:00Z"),
				},
				{
					ID:        "lm-3",
					FromMe:    true,
					Text:      "Sí, me encantaría visitarla. ¿Qué horarios tienes disponibles esta semana?",
					Timestamp: seedTime("2026-02-15T12:00:00Z"),
				},
				{
					ID:        "lm-4",
					FromMe:    false,
					Text:      "Puedo enseñártela mañana a las 17:00 o el jueves a las 18:00. ¿Te viene bien alguno?",
					Timestamp: seedTime("2026-02-15T14:30:00Z"),
				},
			},
		},
		{
			ParticipantID: "landlord-inmobiliaria-garcia",
			Type:          TypeLandlord,
			// One inbound message, so at most one unread.
			UnreadCount: 1,
			Messages: []ChatMessage{
				{
					ID:        "lm-5",
					FromMe:    true,
					Text:      "Buenos días, vi el estudio en Centro publicado en Livix. ¿Cuándo podría visitarlo?",
					Timestamp: seedTime("2026-02-10T09:00:00Z"),
				},
				{
					ID:        "lm-6",
					FromMe:    false,
					Text:      "Buenos días. Sí, el estudio sigue disponible a 520€/mes. Podemos coordinar una visita esta semana.",
					Timestamp: seedTime("2026-02-10T10:45:00Z"),
				},
			},
		},
	}
}
