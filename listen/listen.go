// Package listen ingests pushed display content. UDP datagrams, MQTT
// messages, and the display file all pass through the sanitizer and
// feed the same latest-wins inbox slot; the listeners are the sole
// writers of that record.
package listen

import (
	"log"
	"time"

	"vfdd/inbox"
	"vfdd/sanitize"
)

// Origins recorded on ingested frames, used for stats and for the file
// poller's refresh-only-own-record rule.
const (
	OriginUDP  = "udp"
	OriginMQTT = "mqtt"
	OriginFile = "file"
)

// ingestor is the shared sanitize-then-store path behind every
// listener. Rejected payloads leave the prior record untouched and are
// logged through a windowed dedupe so a chatty bad sender cannot flood
// the log.
type ingestor struct {
	store    *inbox.Store
	rejects  *rejectLog
	onIngest func(origin string)
	onReject func(origin string)
}

func newIngestor(store *inbox.Store, onIngest, onReject func(origin string)) *ingestor {
	return &ingestor{
		store:    store,
		rejects:  newRejectLog(time.Minute, defaultRejectLogKeys),
		onIngest: onIngest,
		onReject: onReject,
	}
}

func (i *ingestor) ingest(payload []byte, origin, from string) {
	f, ok := sanitize.Sanitize(payload)
	if !ok {
		if suffix, emit := i.rejects.Process(payload, time.Now()); emit {
			log.Printf("%s: rejected payload from %s (%d bytes)%s", origin, from, len(payload), suffix)
		}
		if i.onReject != nil {
			i.onReject(origin)
		}
		return
	}
	i.store.Set(f, origin, time.Now())
	if i.onIngest != nil {
		i.onIngest(origin)
	}
}
