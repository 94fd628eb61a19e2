package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/auraCodesKM/resourcehub-sdk-go/services/catalog"
	"github.com/auraCodesKM/resourcehub-sdk-go/utils"
)

var (
	uploadFile        string
	uploadTitle       string
	uploadCategory    string
	uploadDescription string
	uploadPrice       string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a PDF resource and register it on the ledger",
	Long: `两阶段上传：文件先上内容寻址网关，拿到内容标识后再提交账本登记交易。
登记阶段失败时内容已在存储里（无法回收），命令会如实报告登记失败。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		a, err := setupApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.controller.ConnectAndLoad(ctx); err != nil {
			return err
		}

		payload, err := utils.ReadFileWithProgress(uploadFile, func(p utils.FileProgress) {
			fmt.Printf("\rReading file... %d%%", p.Percentage)
		})
		if err != nil {
			return err
		}
		fmt.Println()

		err = a.controller.Upload(ctx, &catalog.UploadInput{
			Payload:      payload,
			Filename:     filepath.Base(uploadFile),
			Title:        uploadTitle,
			Category:     uploadCategory,
			Description:  uploadDescription,
			PriceDecimal: uploadPrice,
		})

		state := a.controller.UploadState()
		if err != nil {
			if state.ContentID != "" {
				// 孤儿内容：存储成功、登记失败
				fmt.Printf("Content was stored (id %s) but ledger registration failed.\n", state.ContentID)
			}
			return err
		}

		fmt.Println("Resource uploaded and listed.")
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "path to the PDF file")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "resource title")
	uploadCmd.Flags().StringVar(&uploadCategory, "category", "education", "resource category")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "resource description")
	uploadCmd.Flags().StringVar(&uploadPrice, "price", "0.005", "price in ETH (decimal string)")
	_ = uploadCmd.MarkFlagRequired("file")
	_ = uploadCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(uploadCmd)
}
