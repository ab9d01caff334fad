package internal

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/DrGermanius/Glonni/internal/model"
)

//go:embed seed.yaml
var seedFile []byte

// Seed is the sample data every projection starts from until its key is first
// written.
type Seed struct {
	SellerOrders     []model.SellerOrder     `yaml:"sellerOrders"`
	SellerReturns    []model.SellerReturn    `yaml:"sellerReturns"`
	SellerProducts   []model.SellerProduct   `yaml:"sellerProducts"`
	AdminOrders      []model.AdminOrder      `yaml:"adminOrders"`
	AdminReturns     []model.AdminReturn     `yaml:"adminReturns"`
	AdminPayments    []model.AdminPayment    `yaml:"adminPayments"`
	AdminSettlements []model.AdminSettlement `yaml:"adminSettlements"`
	AdminVendors     []model.AdminVendor     `yaml:"adminVendors"`
	AdminUsers       []model.AdminUser       `yaml:"adminUsers"`
	AdminWallets     model.Wallets           `yaml:"adminWallets"`
}

func LoadSeed() (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(seedFile, &s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return s, nil
}
