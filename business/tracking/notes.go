package tracking

import (
	"errors"

	"github.com/pobyzaarif/goshortcute"
)

var errNoteCipher = errors.New("failed to process check-in note")

// sealNote encrypts a free-text note with AES-CBC and base64 encodes it for storage.
func sealNote(note, key string) (string, error) {
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(note), []byte(key))
	if err != nil {
		return "", errors.Join(errNoteCipher, err)
	}
	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func openNote(sealed, key string) (string, error) {
	decoded := goshortcute.StringtoBase64Decode(sealed)
	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(key))
	if err != nil {
		return "", errors.Join(errNoteCipher, err)
	}
	return plain, nil
}
