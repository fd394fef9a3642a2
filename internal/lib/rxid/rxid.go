// Package rxid генерирует уникальные идентификаторы рецептов
// в формате RX-<YYYYMMDD>-<8 hex символов>.
package rxid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New возвращает новый идентификатор рецепта для указанной даты.
func New(now time.Time) string {
	tail := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("RX-%s-%s", now.UTC().Format("20060102"), tail)
}
