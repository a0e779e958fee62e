/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package output

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/cyclescan/pkg/logger"
	"github.com/carverauto/cyclescan/pkg/scanerr"
)

var (
	// ErrCAParsingFailed is returned when the CA certificate cannot be parsed.
	ErrCAParsingFailed = errors.New("failed to parse CA certificate")
)

const natsFlushTimeout = 5 * time.Second

// NATSConfig selects the server, subject and optional JetStream stream.
type NATSConfig struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
	Stream  string `json:"stream,omitempty"`
	Domain  string `json:"domain,omitempty"`
	TLS     *TLS   `json:"tls,omitempty"`
}

// TLS holds client certificate paths for mTLS.
type TLS struct {
	CAFile     string `json:"ca_file"`
	CertFile   string `json:"cert_file"`
	KeyFile    string `json:"key_file"`
	ServerName string `json:"server_name,omitempty"`
}

// recordEvent is the message published for each record.
type recordEvent struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Type   string    `json:"type"`
	Time   time.Time `json:"time"`
	ScanID string    `json:"scan_id"`
	Fields []string  `json:"fields"`
}

// NATSSink publishes each record as a JSON event.
type NATSSink struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
	scanID  string
	logger  logger.Logger
}

// TLSConfig builds a tls.Config for connecting to NATS using mTLS.
func TLSConfig(t *TLS) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caCert, err := os.ReadFile(t.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, ErrCAParsingFailed
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		ServerName:   t.ServerName,
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// NewNATSSink connects and, when a stream is configured, makes sure it exists.
func NewNATSSink(ctx context.Context, cfg *NATSConfig, scanID string, log logger.Logger) (*NATSSink, error) {
	opts := []nats.Option{
		nats.Name("cyclescan-" + scanID),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	if cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", scanerr.ErrConfigFatal, err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, scanerr.Resource("connect to NATS", err)
	}

	s := &NATSSink{nc: nc, subject: cfg.Subject, scanID: scanID, logger: log}

	if cfg.Stream == "" {
		return s, nil
	}

	if cfg.Domain != "" {
		s.js, err = jetstream.NewWithDomain(nc, cfg.Domain)
	} else {
		s.js, err = jetstream.New(nc)
	}

	if err != nil {
		nc.Close()
		return nil, scanerr.Resource("create JetStream context", err)
	}

	if _, err = s.js.Stream(ctx, cfg.Stream); err != nil {
		_, err = s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     cfg.Stream,
			Subjects: []string{cfg.Subject},
		})
		if err != nil {
			nc.Close()
			return nil, scanerr.Resource(fmt.Sprintf("create or get stream %s", cfg.Stream), err)
		}

		log.Info().Str("stream", cfg.Stream).Msg("Created NATS JetStream stream")
	}

	return s, nil
}

// WriteRecord publishes one record.
func (s *NATSSink) WriteRecord(fields []string) error {
	data, err := json.Marshal(recordEvent{
		ID:     uuid.New().String(),
		Source: "cyclescan",
		Type:   "com.carverauto.cyclescan.record",
		Time:   time.Now().UTC(),
		ScanID: s.scanID,
		Fields: fields,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if s.js != nil {
		if _, err := s.js.PublishAsync(s.subject, data); err != nil {
			return fmt.Errorf("failed to publish record: %w", err)
		}

		return nil
	}

	if err := s.nc.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}

	return nil
}

// Close waits for outstanding publishes and disconnects.
func (s *NATSSink) Close() error {
	defer s.nc.Close()

	if s.js != nil {
		select {
		case <-s.js.PublishAsyncComplete():
		case <-time.After(natsFlushTimeout):
			return fmt.Errorf("timed out waiting for %d pending publishes", s.js.PublishAsyncPending())
		}
	}

	return s.nc.FlushTimeout(natsFlushTimeout)
}
