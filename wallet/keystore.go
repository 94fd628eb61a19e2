package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/google/uuid"
)

// KeystoreManager 加密私钥文件管理器
//
// 使用标准的 Web3 Secret Storage 格式（scrypt + AES-128-CTR），
// 与主流钱包的 keystore 文件互通。
type KeystoreManager struct {
	keystoreDir string
}

// NewKeystoreManager 创建 Keystore 管理器
func NewKeystoreManager(keystoreDir string) (*KeystoreManager, error) {
	if err := os.MkdirAll(keystoreDir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	return &KeystoreManager{
		keystoreDir: keystoreDir,
	}, nil
}

// Save 用口令加密保存钱包私钥，返回 keystore 文件路径
func (km *KeystoreManager) Save(w *LocalWallet, password string) (string, error) {
	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    w.Address(),
		PrivateKey: w.PrivateKey(),
	}

	encrypted, err := keystore.EncryptKey(key, password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return "", fmt.Errorf("encrypt key: %w", err)
	}

	// 文件名与 geth keystore 约定一致：UTC--<时间戳>--<地址>
	filename := fmt.Sprintf("UTC--%s--%s",
		time.Now().UTC().Format("2006-01-02T15-04-05.000000000Z"),
		w.Address().Hex()[2:])
	path := filepath.Join(km.keystoreDir, filename)

	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return "", fmt.Errorf("write keystore file: %w", err)
	}

	return path, nil
}

// Load 用口令解密 keystore 文件并恢复钱包
func (km *KeystoreManager) Load(path string, password string) (*LocalWallet, error) {
	return LoadKeystoreFile(path, password)
}

// LoadKeystoreFile 用口令解密任意路径的 keystore 文件并恢复钱包，
// 不要求文件位于受管目录内
func LoadKeystoreFile(path string, password string) (*LocalWallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keystore file: %w", err)
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt key: %w", err)
	}

	return &LocalWallet{
		privateKey: key.PrivateKey,
		address:    key.Address,
		createdAt:  time.Now(),
	}, nil
}

// List 列出目录下的全部 keystore 文件
func (km *KeystoreManager) List() ([]string, error) {
	entries, err := os.ReadDir(km.keystoreDir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(km.keystoreDir, entry.Name()))
	}
	return files, nil
}
