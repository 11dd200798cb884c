package monitoring

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	ws "github.com/maxxlamenaace/roomio-be/internal/websocket"
)

// Stats is the frame payload broadcast to clients on the global feed.
type Stats struct {
	CPUPercent float64 `json:"cpuPercent"`
	MemPercent float64 `json:"memPercent"`
	Users      int     `json:"users"`
	Rooms      int     `json:"rooms"`
	Messages   int     `json:"messages"`
	SampledAt  string  `json:"sampledAt"`
}

// StatUpdater periodically samples host load and forum counts and
// broadcasts them over the websocket hub.
type StatUpdater struct {
	db     *sql.DB
	hub    *ws.Hub
	ticker *time.Ticker
	done   chan bool
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(db *sql.DB, hub *ws.Hub) *StatUpdater {
	return &StatUpdater{
		db:   db,
		hub:  hub,
		done: make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(15 * time.Second)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.broadcastStats()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.broadcastStats()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

func (su *StatUpdater) broadcastStats() {
	stats := Stats{SampledAt: time.Now().UTC().Format(time.RFC3339)}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: failed to sample CPU")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("StatUpdater: failed to sample memory")
	}

	row := su.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM rooms),
		       (SELECT COUNT(*) FROM messages)`)
	if err := row.Scan(&stats.Users, &stats.Rooms, &stats.Messages); err != nil {
		log.Error().Err(err).Msg("StatUpdater: failed to count entities")
		return
	}

	frame, err := json.Marshal(ws.Frame{Action: "stats.update", Payload: stats})
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: failed to marshal stats frame")
		return
	}
	su.hub.Broadcast <- frame
}
