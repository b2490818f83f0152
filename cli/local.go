package cli

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"knucklebone/commands"
	"knucklebone/config"
	"knucklebone/database"
	"knucklebone/dice"
	"knucklebone/logger"
	"knucklebone/metrics"
)

// cliChannel keys per-channel state such as the last roll for local use.
const cliChannel = "cli"

// local is the dispatcher wired to the on-disk store, without a chat platform.
type local struct {
	db         *database.Database
	dispatcher *commands.Dispatcher
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.seed != 0 {
		cfg.DiceSeed = opts.seed
	}
	return cfg, nil
}

func openStore(opts *options) (*database.Database, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return database.NewDatabase(cfg.DBPath)
}

func openLocal(opts *options) (*local, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// only errors, so log lines do not mix with command output
	log, err := logger.New("knucklebone-cli", "error")
	if err != nil {
		db.Close()
		return nil, err
	}

	app := commands.NewApp(
		dice.NewRoller(dice.NewSource(cfg.DiceSeed)),
		db,
		log,
		metrics.New(prometheus.NewRegistry()),
	)
	return &local{db: db, dispatcher: commands.NewDispatcher(app, commands.Table())}, nil
}

func (l *local) Close() error {
	return l.db.Close()
}

var markupStripper = strings.NewReplacer("**", "", "`", "")

// renderPlain formats a reply for a terminal. Dropped dice keep their ~~x~~.
func renderPlain(reply commands.Reply) string {
	if !reply.Structured() {
		return markupStripper.Replace(reply.Text)
	}

	var lines []string
	if reply.Title != "" {
		lines = append(lines, reply.Title)
	}
	if reply.Text != "" {
		lines = append(lines, markupStripper.Replace(reply.Text))
	}
	for _, f := range reply.Fields {
		lines = append(lines, f.Name+": "+markupStripper.Replace(f.Value))
	}
	return strings.Join(lines, "\n")
}
