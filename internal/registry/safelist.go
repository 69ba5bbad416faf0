// internal/registry/safelist.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"typings-worker/internal/logging"
)

// SafeList est l'ensemble des noms de typings autorisés à l'installation
// automatique lors d'une découverte
type SafeList map[string]struct{}

// Allows indique si le typing est autorisé.
// Une safelist vide n'autorise rien: la découverte n'installe alors que ce
// que le host demande explicitement.
func (s SafeList) Allows(name string) bool {
	_, ok := s[name]
	return ok
}

// TypesMap associe un alias de typing à son nom canonique dans le registre
type TypesMap map[string]string

// Resolve retourne le nom canonique d'un typing, ou le nom inchangé
// s'il n'a pas d'alias
func (m TypesMap) Resolve(name string) string {
	if canonical, ok := m[name]; ok {
		return canonical
	}
	return name
}

// LoadSafeList lit le fichier safelist ({nom: {match: ...}, ...}).
// Tolérant comme le chargeur de registre: toute erreur produit une
// safelist vide et un diagnostic si activé.
func LoadSafeList(path string, log *logging.Log) SafeList {
	safeList := SafeList{}

	data, err := os.ReadFile(path)
	if err != nil {
		if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Safe list file '%s' could not be read: %v", path, err))
		}
		return safeList
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Error when loading safe list file '%s': %v", path, err))
		}
		return safeList
	}

	for name := range doc {
		safeList[name] = struct{}{}
	}
	return safeList
}

// typesMapFile est la forme attendue du fichier typesMap.json
type typesMapFile struct {
	SimpleMap map[string]string `json:"simpleMap"`
}

// LoadTypesMap lit le fichier de correspondance des alias de typings.
// Même tolérance aux erreurs que LoadSafeList.
func LoadTypesMap(path string, log *logging.Log) TypesMap {
	typesMap := TypesMap{}

	data, err := os.ReadFile(path)
	if err != nil {
		if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Types map file '%s' could not be read: %v", path, err))
		}
		return typesMap
	}

	var doc typesMapFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if log.IsEnabled() {
			log.WriteLine(fmt.Sprintf("Error when loading types map file '%s': %v", path, err))
		}
		return typesMap
	}

	for alias, canonical := range doc.SimpleMap {
		typesMap[alias] = canonical
	}
	return typesMap
}
