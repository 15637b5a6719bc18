package domain

// Category is the closed set of item categories a posting can carry.
type Category string

const (
	// Identity documents.
	CategoryStudentID     Category = "STUDENT_ID"
	CategoryIDCard        Category = "ID_CARD"
	CategoryBankCard      Category = "BANK_CARD"
	CategoryCampusCard    Category = "CAMPUS_CARD"
	CategoryDriverLicense Category = "DRIVER_LICENSE"

	// Electronics.
	CategoryMobilePhone Category = "MOBILE_PHONE"
	CategoryLaptop      Category = "LAPTOP"
	CategoryTablet      Category = "TABLET"
	CategoryHeadphones  Category = "HEADPHONES"
	CategoryPowerBank   Category = "POWER_BANK"
	CategoryCharger     Category = "CHARGER"
	CategoryUSBDrive    Category = "USB_DRIVE"
	CategoryCamera      Category = "CAMERA"
	CategorySmartwatch  Category = "SMARTWATCH"

	// Study supplies.
	CategoryTextbook   Category = "TEXTBOOK"
	CategoryNotebook   Category = "NOTEBOOK"
	CategoryPen        Category = "PEN"
	CategoryPencil     Category = "PENCIL"
	CategoryEraser     Category = "ERASER"
	CategoryRuler      Category = "RULER"
	CategoryCalculator Category = "CALCULATOR"
	CategoryFolder     Category = "FOLDER"
	CategoryBackpack   Category = "BACKPACK"

	// Clothing.
	CategoryJacket  Category = "JACKET"
	CategorySweater Category = "SWEATER"
	CategoryTShirt  Category = "T_SHIRT"
	CategoryPants   Category = "PANTS"
	CategoryShoes   Category = "SHOES"
	CategoryHat     Category = "HAT"
	CategoryScarf   Category = "SCARF"
	CategoryGloves  Category = "GLOVES"

	// Accessories.
	CategoryGlasses    Category = "GLASSES"
	CategorySunglasses Category = "SUNGLASSES"
	CategoryWatch      Category = "WATCH"
	CategoryNecklace   Category = "NECKLACE"
	CategoryBracelet   Category = "BRACELET"
	CategoryRing       Category = "RING"
	CategoryEarrings   Category = "EARRINGS"

	// Daily items.
	CategoryWaterBottle Category = "WATER_BOTTLE"
	CategoryUmbrella    Category = "UMBRELLA"
	CategoryWallet      Category = "WALLET"
	CategoryKey         Category = "KEY"
	CategoryKeychain    Category = "KEYCHAIN"
	CategoryCosmetics   Category = "COSMETICS"
	CategoryMedicine    Category = "MEDICINE"

	// Sports gear.
	CategoryBasketball        Category = "BASKETBALL"
	CategoryFootball          Category = "FOOTBALL"
	CategoryBadmintonRacket   Category = "BADMINTON_RACKET"
	CategoryTableTennisPaddle Category = "TABLE_TENNIS_PADDLE"
	CategorySportsShoes       Category = "SPORTS_SHOES"
	CategorySportsClothes     Category = "SPORTS_CLOTHES"
	CategoryYogaMat           Category = "YOGA_MAT"

	CategoryOther Category = "OTHER"
)

// categoryWeights assigns each category a salience tier. Identity documents
// rank highest, then electronics; generic items rank lowest. Categories not
// listed here weigh 1, so the table is total over any Category value.
var categoryWeights = map[Category]int{
	CategoryStudentID:     20,
	CategoryIDCard:        20,
	CategoryCampusCard:    20,
	CategoryDriverLicense: 20,
	CategoryBankCard:      18,

	CategoryMobilePhone: 15,
	CategoryLaptop:      15,
	CategoryTablet:      15,
	CategoryHeadphones:  12,
	CategoryPowerBank:   12,
	CategoryCharger:     12,
	CategoryCamera:      12,
	CategorySmartwatch:  12,
	CategoryUSBDrive:    10,

	CategoryTextbook:   12,
	CategoryCalculator: 12,
	CategoryNotebook:   10,
	CategoryBackpack:   10,
	CategoryPen:        8,
	CategoryPencil:     8,
	CategoryEraser:     8,
	CategoryRuler:      8,
	CategoryFolder:     8,

	CategoryJacket:  8,
	CategorySweater: 8,
	CategoryShoes:   8,
	CategoryTShirt:  6,
	CategoryPants:   6,
	CategoryHat:     6,
	CategoryScarf:   6,
	CategoryGloves:  6,

	CategoryGlasses:    8,
	CategoryWatch:      8,
	CategorySunglasses: 5,
	CategoryNecklace:   5,
	CategoryBracelet:   5,
	CategoryRing:       5,
	CategoryEarrings:   5,

	CategoryWallet:      10,
	CategoryKey:         10,
	CategoryWaterBottle: 6,
	CategoryUmbrella:    6,
	CategoryKeychain:    6,
	CategoryCosmetics:   6,
	CategoryMedicine:    6,

	CategoryBasketball:        4,
	CategoryFootball:          4,
	CategoryBadmintonRacket:   4,
	CategoryTableTennisPaddle: 4,
	CategorySportsShoes:       4,
	CategorySportsClothes:     4,
	CategoryYogaMat:           4,

	CategoryOther: 2,
}

// Weight returns the category's salience tier, defaulting to 1 for values
// outside the table.
func (c Category) Weight() int {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return 1
}
