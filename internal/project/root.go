// internal/project/root.go
package project

import (
	"os"
	"path/filepath"
)

// descriptorFile est le descripteur de projet recherché dans les ancêtres
const descriptorFile = "package.json"

// FindProjectRoot remonte les répertoires ancêtres du fichier donné et
// retourne le premier contenant un package.json. Le second retour est faux
// si aucun ancêtre (jusqu'à la racine incluse) n'en contient.
// Sans effet de bord hormis les sondes d'existence.
func FindProjectRoot(filePath string) (string, bool) {
	dir := filepath.Dir(filePath)

	for {
		descriptor := filepath.Join(dir, descriptorFile)
		if info, err := os.Stat(descriptor); err == nil && !info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Racine du système de fichiers atteinte
			return "", false
		}
		dir = parent
	}
}
