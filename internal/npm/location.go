// internal/npm/location.go
package npm

import (
	"path/filepath"
	"strings"
)

// defaultCommand est la commande npm nue utilisée quand aucun chemin
// frère ne peut être dérivé
const defaultCommand = "npm"

// ResolveLocation détermine l'emplacement de l'exécutable npm.
// Un chemin explicite gagne toujours. Sinon, si le nom de l'exécutable du
// runtime contient "node", on sélectionne le npm frère dans le même
// répertoire; à défaut la commande nue "npm".
// Le résultat est cité s'il contient des espaces.
func ResolveLocation(explicit, exePath string) string {
	if explicit != "" {
		return QuoteIfNeeded(explicit)
	}

	base := filepath.Base(exePath)
	if strings.Contains(base, "node") {
		return QuoteIfNeeded(filepath.Join(filepath.Dir(exePath), defaultCommand))
	}
	return defaultCommand
}

// QuoteIfNeeded entoure le chemin de guillemets s'il contient un espace
// et n'est pas déjà cité
func QuoteIfNeeded(path string) string {
	if strings.Contains(path, " ") && !strings.HasPrefix(path, `"`) {
		return `"` + path + `"`
	}
	return path
}

// Unquote retire les guillemets d'encadrement pour l'usage en argv
func Unquote(path string) string {
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		return path[1 : len(path)-1]
	}
	return path
}
