package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type AgentConfig struct {
	ID          int
	Goroutines  int
	Duration    time.Duration
	Episodes    int
	Playouts    int
	Exploration float64
}

type GameRecord struct {
	ID     int
	AgentA int // AgentConfig.ID of the agent playing PlayerA
	AgentB int // AgentConfig.ID of the agent playing PlayerB
	GameMetric
}

type MoveRecord struct {
	Game  int // GameRecord.ID
	Agent int // AgentConfig.ID
	MoveMetric
}

type SampleRecord struct {
	Game int // GameRecord.ID
	PositionSample
}

type Writer struct {
	baseDir string
}

// NewWriter creates dir/name/<timestamp> and writes every file there.
func NewWriter(dir, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "goroutines", "duration", "episodes", "playouts", "exploration"}
	return writeCSV(w.baseDir, "agent_configs.csv", "agent config", header, configs, func(config AgentConfig) []string {
		return []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Episodes),
			strconv.Itoa(config.Playouts),
			strconv.FormatFloat(config.Exploration, 'g', -1, 64),
		}
	})
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent_a", "agent_b", "starting_player", "result", "start_time", "end_time", "duration", "total_moves"}
	return writeCSV(w.baseDir, "game_records.csv", "game record", header, records, func(record GameRecord) []string {
		return []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.AgentA),
			strconv.Itoa(record.AgentB),
			record.StartingPlayer.String(),
			record.Result.String(),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		}
	})
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "agent", "step", "player", "move", "duration", "episodes", "full_playouts", "nodes", "is_tree_reset", "expansion_halted"}
	return writeCSV(w.baseDir, "move_records.csv", "move record", header, records, func(record MoveRecord) []string {
		return []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Step),
			record.Player.String(),
			record.Move.String(),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Nodes),
			strconv.FormatBool(record.IsTreeReset),
			strconv.FormatBool(record.ExpansionHalted),
		}
	})
}

func (w *Writer) WriteSampleRecords(records []SampleRecord) error {
	header := []string{"game", "step", "hash", "pieces", "slides", "board"}
	return writeCSV(w.baseDir, "position_samples.csv", "position sample", header, records, func(record SampleRecord) []string {
		return []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.FormatUint(record.Hash, 16),
			strconv.Itoa(record.Pieces),
			strconv.Itoa(record.Slides),
			record.Board,
		}
	})
}

func writeCSV[T any](dir, file, what string, header []string, records []T, row func(T) []string) error {
	// Create a file
	path := filepath.Join(dir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}

	// Write each row
	for _, record := range records {
		err = writer.Write(row(record))
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", what, err)
		}
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s file: %w", what, err)
	}
	return nil
}
