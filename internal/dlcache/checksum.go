package dlcache

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

// checkMD5 reports whether the file at path matches md5sum. A blank
// md5sum is considered a match (no checksum was required).
func checkMD5(path, md5sum string) bool {
	if md5sum == "" {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	return hex.EncodeToString(h.Sum(nil)) == md5sum
}

// VerifyDetachedSignature checks an ASCII-armored detached PGP signature
// for the file at path against a public key. It is separate from the MD5
// checksum: Cache.Fetch does not call it, and no index option selects it.
func VerifyDetachedSignature(path string, armoredPublicKey, armoredSignature string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	key, err := crypto.NewKeyFromArmored(armoredPublicKey)
	if err != nil {
		return err
	}
	keyring, err := crypto.NewKeyRing(key)
	if err != nil {
		return err
	}

	message := crypto.NewPlainMessage(data)
	signature, err := crypto.NewPGPSignatureFromArmored(armoredSignature)
	if err != nil {
		return err
	}

	return keyring.VerifyDetached(message, signature, 0)
}
