package utils

import (
	"fmt"
	rndm "math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

func GetUUID() string {
	return uuid.New().String()
}

// --- Temporary Identities ---

// TempIDPrefix marks entities created optimistically, before the backend has
// assigned them a permanent id. Reconciliation filters by this prefix.
const TempIDPrefix = "temp-"

func TempID() string {
	return fmt.Sprintf("%s%d", TempIDPrefix, time.Now().UnixNano())
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// --- Image Validation ---

var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// --- Directory Helper ---

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
