package room

type SetCreateRoomSessionParams struct {
	ConnectToken string
	Username     string
	ContentType  string
	ContentId    string
	EpisodeId    string
}

type SetJoinRoomSessionParams struct {
	ConnectToken string
	Username     string
	RoomCode     string
}

type SetRoomParams struct {
	RoomCode    string
	ContentType string
	ContentId   string
	EpisodeId   string
	CreatedAt   int64
}

type UpdateRoomContentParams struct {
	RoomCode    string
	ContentType string
	ContentId   string
	EpisodeId   string
}

type SetParticipantParams struct {
	ParticipantId string
	RoomCode      string
	Username      string
	IsHost        bool
	IsMuted       bool
	IsHostMuted   bool
	IsSpeaking    bool
}

type GetParticipantParams struct {
	ParticipantId string
	RoomCode      string
}

type RemoveParticipantParams struct {
	ParticipantId string
	RoomCode      string
}

type SetPlayerParams struct {
	RoomCode      string
	IsPlaying     bool
	CurrentTime   float64
	PlaybackRate  float64
	SubtitleIndex int
	UpdatedAt     int64
}

type UpdatePlayerStateParams struct {
	RoomCode     string
	IsPlaying    bool
	CurrentTime  float64
	PlaybackRate float64
	UpdatedAt    int64
}

type AddChatMessageParams struct {
	RoomCode  string
	MessageId string
	Username  string
	Message   string
	Timestamp int64
}

type SetUnmuteRequestParams struct {
	RoomCode    string
	TargetId    string
	RequesterId string
}

type RemoveUnmuteRequestParams struct {
	RoomCode string
	TargetId string
}
