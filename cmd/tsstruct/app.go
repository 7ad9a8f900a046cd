package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gnana997/tsstruct/pkg/config"
	"github.com/gnana997/tsstruct/pkg/extractor"
	"github.com/gnana997/tsstruct/pkg/helpers"
	"github.com/gnana997/tsstruct/pkg/parser"
	"github.com/gnana997/tsstruct/pkg/parser/queries"
	"github.com/gnana997/tsstruct/pkg/resolver"
	"github.com/gnana997/tsstruct/pkg/source"
	"github.com/gnana997/tsstruct/pkg/util"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	parsers   *parser.ParserManager
	queries   *queries.QueryManager
	store     *source.FSStore
	extractor *extractor.Extractor
}

// newApp wires the pipeline for cfg. Logs go to logOut; stdout stays free
// for JSON output and the MCP transport.
func newApp(cfg *config.Config, logOut io.Writer) *app {
	logger := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(cfg.Log.Level),
		Format: util.LogFormat(cfg.Log.Format),
		Output: logOut,
	})
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	return &app{
		cfg:       cfg,
		logger:    logger,
		parsers:   pm,
		queries:   qm,
		store:     source.NewFSStore(cfg.StoreConfig()),
		extractor: extractor.NewExtractor(pm, qm, cfg.ExtractorOptions(), logger),
	}
}

// session starts a fresh resolution session over the file store.
func (a *app) session() *resolver.Session {
	return resolver.NewSession(a.extractor, a.store, a.logger)
}

func (a *app) helpers() *helpers.Extractor {
	return helpers.NewExtractor(a.parsers, a.queries, a.logger)
}

// Close releases queries, parsers and mapped files.
func (a *app) Close() error {
	return errors.Join(a.queries.Close(), a.parsers.Close(), a.store.Close())
}
