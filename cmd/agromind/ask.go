package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/agromind/internal/chart"
	"github.com/verte-zerg/agromind/internal/chatapi"
	"github.com/verte-zerg/agromind/internal/logger"
	"github.com/verte-zerg/agromind/internal/remote"
	"github.com/verte-zerg/agromind/internal/session"
	"github.com/verte-zerg/agromind/internal/store"
)

var askPlain bool

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAskCmd,
	}
	cmd.Flags().BoolVar(&askPlain, "plain", false, "print the answer without markdown rendering")
	return cmd
}

func runAskCmd(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("question must not be empty")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := openLogger(cfg)
	defer logger.Sync(log)

	client, err := newChatClient(cfg)
	if err != nil {
		return err
	}

	var st *store.Store
	if cfg.HistoryEnabled {
		var closeStore func()
		if st, closeStore, err = openStore(); err != nil {
			return err
		}
		defer closeStore()
	}

	sess := session.New(session.Options{Earliest: cfg.EarliestDate})
	req, _ := sess.Submit(prompt)
	started := time.Now()
	answer, err := client.Ask(cmd.Context(), req.Prompt)
	if st != nil {
		defer saveExchange(cmd, st, sess, started, log)
	}
	if err != nil {
		sess.Fail(req.ID, err)
		log.Warn("ask failed",
			zap.String("session", sess.ID()),
			zap.String("error_kind", remote.Kind(err)),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err),
		)
		return fmt.Errorf("ask failed (%s): %w", remote.Kind(err), err)
	}
	sess.Resolve(req.ID, answer)
	if answer == chatapi.NotFoundText {
		logErrln("the reply carried no final answer; try --decoder", chatapi.DecoderRaw, "to see it verbatim")
	}
	log.Info("ask succeeded", zap.String("session", sess.ID()), zap.Duration("duration", time.Since(started)))

	out := cmd.OutOrStdout()
	if !askPlain && chart.ShouldUseColor(out, false) {
		if rendered, rerr := glamour.Render(answer, "dark"); rerr == nil {
			answer = strings.TrimRight(rendered, "\n")
		}
	}
	if _, err := fmt.Fprintln(out, answer); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// saveExchange stores the finished exchange, including a user turn left without a reply.
func saveExchange(cmd *cobra.Command, st *store.Store, sess *session.Session, started time.Time, log *zap.Logger) {
	if err := st.SaveSession(cmd.Context(), sess.ID(), started, sess.Turns()); err != nil {
		log.Warn("failed to store exchange", zap.String("session", sess.ID()), zap.Error(err))
		logErrf("failed to store history: %v\n", err)
	}
}
