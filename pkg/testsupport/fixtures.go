package testsupport

import "os"

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}
