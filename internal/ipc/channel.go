// internal/ipc/channel.go
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"typings-worker/internal/logging"
	"typings-worker/pkg/models"
)

// ErrMalformedMessage signale une ligne indéchiffrable. Le scanner a tout de
// même avancé: l'appelant peut relire le message suivant.
var ErrMalformedMessage = errors.New("malformed inbound message")

// Channel est le canal de messages bidirectionnel avec le host: une ligne
// JSON par message, dans les deux sens. En production il est branché sur
// stdin/stdout du processus.
type Channel struct {
	scanner *bufio.Scanner
	diag    *logging.Log

	// Protège l'écrivain: le endpoint de statut et la boucle de dispatch
	// ne doivent pas entrelacer leurs lignes
	mu     sync.Mutex
	writer io.Writer
}

// NewChannel crée un canal au-dessus des flux donnés
func NewChannel(r io.Reader, w io.Writer, diag *logging.Log) *Channel {
	scanner := bufio.NewScanner(r)
	// Les réponses discover du host peuvent être volumineuses
	const maxLineSize = 16 * 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Channel{
		scanner: scanner,
		writer:  w,
		diag:    diag,
	}
}

// Read bloque jusqu'au prochain message entrant et le décode en enveloppe.
// Retourne io.EOF quand le host s'est déconnecté, ErrMalformedMessage pour
// une ligne indéchiffrable, et toute autre erreur est définitive: le scanner
// ne produira plus jamais de message (ligne au-delà de la taille maximale,
// erreur de lecture du flux sous-jacent).
func (c *Channel) Read() (*models.Request, error) {
	for c.scanner.Scan() {
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		req, err := models.DecodeRequest([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return req, nil
	}

	if err := c.scanner.Err(); err != nil {
		return nil, fmt.Errorf("inbound channel failed: %w", err)
	}
	return nil, io.EOF
}

// Send sérialise une réponse et l'émet vers le host, encadrée de lignes de
// diagnostic pour l'observabilité
func (c *Channel) Send(response any) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if c.diag.IsEnabled() {
		c.diag.WriteLine(fmt.Sprintf("Sending response:\n    %s", data))
	}

	c.mu.Lock()
	_, err = c.writer.Write(append(data, '\n'))
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	if c.diag.IsEnabled() {
		c.diag.WriteLine("Response has been sent.")
	}
	return nil
}
