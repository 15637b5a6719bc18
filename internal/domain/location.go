package domain

// Location is a primary campus location.
type Location string

const (
	LocationLibrary          Location = "LIBRARY"
	LocationTeachingBldgA    Location = "TEACHING_BUILDING_A"
	LocationTeachingBldgB    Location = "TEACHING_BUILDING_B"
	LocationDormitoryNorth   Location = "DORMITORY_NORTH"
	LocationDormitorySouth   Location = "DORMITORY_SOUTH"
	LocationCanteenFirst     Location = "CANTEEN_FIRST"
	LocationCanteenSecond    Location = "CANTEEN_SECOND"
	LocationSportsField      Location = "SPORTS_FIELD"
	LocationGym              Location = "GYM"
	LocationLabBuildingA     Location = "LAB_BUILDING_A"
	LocationAdminBuilding    Location = "ADMIN_BUILDING"
	LocationStudentCenter    Location = "STUDENT_CENTER"
	LocationCampusGate       Location = "CAMPUS_GATE"
	LocationExpressCabinet   Location = "EXPRESS_CABINET"
	LocationOther            Location = "OTHER"
)

var locationWeights = map[Location]int{
	LocationLibrary:        10,
	LocationTeachingBldgA:  8,
	LocationTeachingBldgB:  8,
	LocationCanteenFirst:   7,
	LocationCanteenSecond:  7,
	LocationLabBuildingA:   7,
	LocationDormitoryNorth: 6,
	LocationDormitorySouth: 6,
	LocationSportsField:    6,
	LocationGym:            5,
	LocationAdminBuilding:  5,
	LocationStudentCenter:  5,
	LocationExpressCabinet: 5,
	LocationCampusGate:     4,
	LocationOther:          1,
}

// Weight returns the location's salience weight, defaulting to 1 for values
// outside the table.
func (l Location) Weight() int {
	if w, ok := locationWeights[l]; ok {
		return w
	}
	return 1
}

// DetailedLocation is a sub-location within a primary location, e.g. a floor,
// classroom, or canteen window. The value set is open: unknown values weigh 1
// and an empty value weighs 0.
type DetailedLocation string

var detailedLocationWeights = map[DetailedLocation]int{
	// Library.
	"LIBRARY_READING_ROOM": 4,
	"LIBRARY_STACK_ROOM":   4,
	"LIBRARY_FLOOR_1":      3,
	"LIBRARY_FLOOR_2":      3,
	"LIBRARY_FLOOR_3":      3,
	"LIBRARY_FLOOR_4":      3,
	"LIBRARY_ENTRANCE":     2,
	"LIBRARY_CORRIDOR":     1,

	// Teaching buildings.
	"TEACHING_A_CLASSROOM_101": 3,
	"TEACHING_A_CLASSROOM_102": 3,
	"TEACHING_A_CLASSROOM_201": 3,
	"TEACHING_A_CLASSROOM_202": 3,
	"TEACHING_A_FLOOR_1":       2,
	"TEACHING_A_FLOOR_2":       2,
	"TEACHING_A_FLOOR_3":       2,
	"TEACHING_A_CORRIDOR":      1,
	"TEACHING_A_STAIRS":        1,
	"TEACHING_B_CLASSROOM_101": 3,
	"TEACHING_B_CLASSROOM_102": 3,
	"TEACHING_B_CLASSROOM_201": 3,
	"TEACHING_B_FLOOR_1":       2,
	"TEACHING_B_FLOOR_2":       2,
	"TEACHING_B_CORRIDOR":      1,

	// Canteens.
	"CANTEEN_FIRST_WINDOW_1":     3,
	"CANTEEN_FIRST_WINDOW_2":     3,
	"CANTEEN_FIRST_WINDOW_3":     3,
	"CANTEEN_FIRST_DINING_AREA":  2,
	"CANTEEN_FIRST_FLOOR_1":      2,
	"CANTEEN_FIRST_FLOOR_2":      2,
	"CANTEEN_FIRST_ENTRANCE":     1,
	"CANTEEN_SECOND_WINDOW_1":    3,
	"CANTEEN_SECOND_WINDOW_2":    3,
	"CANTEEN_SECOND_DINING_AREA": 2,
	"CANTEEN_SECOND_ENTRANCE":    1,

	// Dormitories.
	"DORM_NORTH_BUILDING_1": 2,
	"DORM_NORTH_BUILDING_2": 2,
	"DORM_NORTH_BUILDING_3": 2,
	"DORM_NORTH_CORRIDOR":   1,
	"DORM_SOUTH_BUILDING_1": 2,
	"DORM_SOUTH_BUILDING_2": 2,
	"DORM_SOUTH_CORRIDOR":   1,

	// Sports field and gym.
	"SPORTS_FIELD_TRACK":      2,
	"SPORTS_FIELD_FOOTBALL":   2,
	"SPORTS_FIELD_BASKETBALL": 2,
	"SPORTS_FIELD_STAND":      1,
	"GYM_BASKETBALL_COURT":    3,
	"GYM_BADMINTON_COURT":     3,
	"GYM_EQUIPMENT_ROOM":      2,
	"GYM_ENTRANCE":            1,

	// Lab building.
	"LAB_A_LAB_101":  4,
	"LAB_A_LAB_102":  4,
	"LAB_A_LAB_201":  4,
	"LAB_A_FLOOR_1":  3,
	"LAB_A_FLOOR_2":  3,
	"LAB_A_CORRIDOR": 1,

	// Admin building and student center.
	"ADMIN_OFFICE_101":            3,
	"ADMIN_OFFICE_201":            3,
	"ADMIN_FLOOR_1":               2,
	"ADMIN_CORRIDOR":              1,
	"STUDENT_CENTER_MEETING_ROOM": 3,
	"STUDENT_CENTER_ACTIVITY_ROOM": 3,
	"STUDENT_CENTER_FLOOR_1":      2,
	"STUDENT_CENTER_CORRIDOR":     1,

	// Gates, parking, garden, express cabinets.
	"GATE_MAIN_ENTRANCE":     2,
	"GATE_SIDE_ENTRANCE":     2,
	"PARKING_LOT_AREA_A":     2,
	"PARKING_LOT_AREA_B":     2,
	"GARDEN_PATH":            1,
	"GARDEN_BENCH":           1,
	"EXPRESS_CABINET_AREA_A": 2,
	"EXPRESS_CABINET_AREA_B": 2,
	"EXPRESS_CABINET_NEARBY": 2,

	"OTHER_UNKNOWN": 1,
}

// Weight returns the sub-location's salience weight. Empty sub-locations
// contribute nothing; unknown non-empty values default to 1.
func (d DetailedLocation) Weight() int {
	if d == "" {
		return 0
	}
	if w, ok := detailedLocationWeights[d]; ok {
		return w
	}
	return 1
}
