package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auraCodesKM/resourcehub-sdk-go/client"
	"github.com/auraCodesKM/resourcehub-sdk-go/identity"
	"github.com/auraCodesKM/resourcehub-sdk-go/services/catalog"
	"github.com/auraCodesKM/resourcehub-sdk-go/services/ledger"
	"github.com/auraCodesKM/resourcehub-sdk-go/services/storage"
	"github.com/auraCodesKM/resourcehub-sdk-go/types"
	"github.com/auraCodesKM/resourcehub-sdk-go/wallet"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "hubctl",
	Short: "Resource Hub command-line client",
	Long: `hubctl 是 Resource Hub 的命令行客户端：
浏览、上传、购买记录在合约账本上的 PDF 资源，载荷存储在内容寻址网关。

配置通过 --config 指定的文件、环境变量（HUBCTL_ 前缀）或默认值提供。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 运行根命令
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userFacing(err))
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./hubctl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("endpoint", "", "ledger JSON-RPC endpoint")
	rootCmd.PersistentFlags().String("contract", "", "Resource Hub contract address")
	rootCmd.PersistentFlags().String("gateway", "", "storage gateway upload endpoint")
	rootCmd.PersistentFlags().String("keystore", "", "keystore file for the signing account")
	rootCmd.PersistentFlags().String("password", "", "keystore password")
	rootCmd.PersistentFlags().String("private-key", "", "hex private key (overrides keystore)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("contract", rootCmd.PersistentFlags().Lookup("contract"))
	_ = viper.BindPFlag("gateway", rootCmd.PersistentFlags().Lookup("gateway"))
	_ = viper.BindPFlag("keystore", rootCmd.PersistentFlags().Lookup("keystore"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("private_key", rootCmd.PersistentFlags().Lookup("private-key"))
}

// initConfig 加载配置文件与环境变量
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("hubctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HUBCTL")
	viper.AutomaticEnv()

	// 配置文件可选；没有也能靠 flag/env 运行
	_ = viper.ReadInConfig()
}

// buildConfig 从 viper 合成客户端配置
func buildConfig() *client.Config {
	cfg := client.DefaultConfig()

	if v := viper.GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := viper.GetString("contract"); v != "" {
		cfg.ContractAddress = v
	}
	if v := viper.GetString("gateway"); v != "" {
		cfg.GatewayEndpoint = v
	}
	if v := viper.GetString("gateway_public_url"); v != "" {
		cfg.GatewayPublicURL = v
	}
	cfg.Debug = viper.GetBool("debug")
	cfg.Logger = client.NewLogger()

	return cfg
}

// app 一次命令执行所需的全部组件
type app struct {
	cli        *client.Client
	session    *wallet.Session
	ledger     ledger.Gateway
	controller *catalog.Controller
}

// setupApp 建立连接、加载签名账户并组装控制器
func setupApp(ctx context.Context, needSigner bool) (*app, error) {
	cfg := buildConfig()

	cli, err := client.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var provider wallet.Provider
	w, err := loadWallet()
	if err != nil {
		cli.Close()
		return nil, err
	}
	if w != nil {
		chainID, err := cli.ChainID(ctx)
		if err != nil {
			cli.Close()
			return nil, err
		}
		provider = wallet.NewLocalProvider(chainID, w)
	} else if needSigner {
		cli.Close()
		return nil, fmt.Errorf("a signing account is required: provide --keystore/--password or --private-key")
	}

	session := wallet.NewSession(provider, cli)

	ledgerGw := ledger.NewGateway(cli)
	storageGw := storage.NewGateway(cli)

	opts := catalog.DefaultOptions()
	opts.Logger = cli.Logger()

	var idProvider identity.Provider
	if user := viper.GetString("user"); user != "" {
		idProvider = identity.NewStaticProvider(identity.User{ID: user})
	}

	controller := catalog.NewController(session, ledgerGw, storageGw, idProvider, opts)

	return &app{
		cli:        cli,
		session:    session,
		ledger:     ledgerGw,
		controller: controller,
	}, nil
}

// close 释放组件
func (a *app) close() {
	a.controller.Close()
	a.session.Close()
	a.cli.Close()
}

// loadWallet 按配置加载本地签名钱包（可能为 nil：匿名浏览）
func loadWallet() (*wallet.LocalWallet, error) {
	if pk := viper.GetString("private_key"); pk != "" {
		return wallet.NewWalletFromPrivateKey(pk)
	}

	ksPath := viper.GetString("keystore")
	if ksPath == "" {
		return nil, nil
	}

	return wallet.LoadKeystoreFile(ksPath, viper.GetString("password"))
}

// userFacing 优先展示分类后的用户提示
func userFacing(err error) string {
	if hubErr, ok := types.IsHubError(err); ok {
		return hubErr.UserMessage
	}
	return err.Error()
}

// commandContext 带超时的命令上下文
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}
