// internal/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"typings-worker/internal/logging"
)

// Snapshot est l'ensemble des noms de paquets connus du registre au moment
// du bootstrap. Immuable après chargement: un rechargement exigerait un
// nouveau processus.
type Snapshot map[string]struct{}

// Has indique si le nom figure dans le snapshot
func (s Snapshot) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names retourne les noms du snapshot, triés
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToRegistryMap construit la forme "fil" du snapshot: nom -> marqueur opaque
// (null en JSON), telle qu'attendue par la réponse typesRegistry
func (s Snapshot) ToRegistryMap() map[string]any {
	m := make(map[string]any, len(s))
	for name := range s {
		m[name] = nil
	}
	return m
}

// registryFile est la forme attendue du document index.json écrit par le
// paquet types-registry: les valeurs des entrées sont opaques
type registryFile struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

// Load lit le document du registre à path et produit un Snapshot.
// Fichier absent ou illisible: snapshot vide, diagnostic si activé.
// Ne remonte jamais d'erreur — l'appelant reçoit toujours un snapshot utilisable.
func Load(path string, log *logging.Log) Snapshot {
	snapshot := Snapshot{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log.IsEnabled() {
				log.WriteLine(fmt.Sprintf("Types registry file '%s' does not exist", path))
			}
		} else if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Error reading types registry file '%s': %v", path, err))
		}
		return snapshot
	}

	var doc registryFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Error when loading types registry file '%s': %v", path, err))
		}
		return snapshot
	}

	for name := range doc.Entries {
		snapshot[name] = struct{}{}
	}
	return snapshot
}
