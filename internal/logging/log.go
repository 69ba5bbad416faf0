// internal/logging/log.go
package logging

import "os"

// Log est le puits de diagnostic visible par le host: un fichier en mode
// append, une ligne par écriture. Une erreur d'écriture le désactive
// définitivement — l'échec du logging ne doit jamais interrompre le host.
type Log struct {
	file    *os.File
	enabled bool
}

// NewLog crée un puits de diagnostic pour le fichier donné.
// Un chemin vide produit un puits désactivé.
func NewLog(path string) *Log {
	if path == "" {
		return &Log{}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &Log{}
	}
	return &Log{file: f, enabled: true}
}

// IsEnabled indique si les écritures de diagnostic sont actives.
// Les appelants doivent tester avant d'appeler WriteLine.
func (l *Log) IsEnabled() bool {
	return l.enabled
}

// WriteLine ajoute text suivi d'un saut de ligne au fichier.
// En cas d'échec le puits se désactive sans remonter l'erreur.
// Pas de retour à l'état activé pendant la vie du processus.
func (l *Log) WriteLine(text string) {
	if !l.enabled {
		return
	}
	if _, err := l.file.WriteString(text + "\n"); err != nil {
		l.enabled = false
	}
}

// Close ferme le fichier sous-jacent s'il existe
func (l *Log) Close() {
	if l.file != nil {
		l.file.Close()
	}
	l.enabled = false
}
