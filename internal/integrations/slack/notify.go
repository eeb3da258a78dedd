// Package slack delivers the finished report digest to a channel. Delivery
// is optional and best-effort; a failed post never fails the run.
package slack

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"rotabot/internal/domain"
	"rotabot/internal/report"
)

// NotifyReport posts the run's digest, prefixed with where the full
// artifacts were written.
func NotifyReport(api *slack.Client, channelID string, r domain.Report, artifactPath string) error {
	msg := fmt.Sprintf("Reporte de rotación listo: *%s* — %s\n```%s```\nArchivo: `%s`",
		r.ClientName, r.Period.Start.Format("2006-01"), report.Digest(r), artifactPath)

	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		log.Printf("slack notify error channel=%s: %v", channelID, err)
		return err
	}
	log.Printf("slack notify ok channel=%s run=%s", channelID, r.RunID)
	return nil
}
