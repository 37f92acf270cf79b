package room

type Room struct {
	ContentType string `redis:"content_type" json:"content_type"`
	ContentId   string `redis:"content_id" json:"content_id"`
	EpisodeId   string `redis:"episode_id" json:"episode_id"`
	CreatedAt   int64  `redis:"created_at" json:"created_at"`
}

type Participant struct {
	Username    string `redis:"username" json:"username"`
	IsHost      bool   `redis:"is_host" json:"is_host"`
	IsMuted     bool   `redis:"is_muted" json:"is_muted"`
	IsHostMuted bool   `redis:"is_host_muted" json:"is_host_muted"`
	IsSpeaking  bool   `redis:"is_speaking" json:"is_speaking"`
}

type Player struct {
	IsPlaying     bool    `redis:"is_playing" json:"is_playing"`
	CurrentTime   float64 `redis:"current_time" json:"current_time"`
	PlaybackRate  float64 `redis:"playback_rate" json:"playback_rate"`
	SubtitleIndex int     `redis:"subtitle_index" json:"subtitle_index"`
	UpdatedAt     int64   `redis:"updated_at" json:"updated_at"`
}

type ChatMessage struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type CreateRoomSession struct {
	Username    string `redis:"username"`
	ContentType string `redis:"content_type"`
	ContentId   string `redis:"content_id"`
	EpisodeId   string `redis:"episode_id"`
}

type JoinRoomSession struct {
	Username string `redis:"username"`
	RoomCode string `redis:"room_code"`
}
