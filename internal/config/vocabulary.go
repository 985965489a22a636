package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the ordered lookup tables used by facet extraction.
// List order is precedence: the first entry that matches wins, so compound
// phrases must be listed before the shorter phrases they contain.
type Vocabulary struct {
	Cities             []string `yaml:"cities"`
	Orientations       []string `yaml:"orientations"`
	OrientationMarkers []string `yaml:"orientation_markers"`
	PropertyTerms      []string `yaml:"property_terms"`

	PriceUnits          []string `yaml:"price_units"`
	PriceMaxSuffixes    []string `yaml:"price_max_suffixes"`
	PriceMinSuffixes    []string `yaml:"price_min_suffixes"`
	PriceApproxSuffixes []string `yaml:"price_approx_suffixes"`
	PriceMaxPrefixes    []string `yaml:"price_max_prefixes"`
	PriceMinPrefixes    []string `yaml:"price_min_prefixes"`
	PriceApproxPrefixes []string `yaml:"price_approx_prefixes"`
	RangeSeparators     []string `yaml:"range_separators"`
}

// DefaultVocabulary returns the built-in Chinese and English tables
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Cities: []string{
			"北京", "上海", "广州", "深圳", "杭州", "南京", "成都", "重庆", "武汉", "西安",
			"天津", "苏州", "厦门", "长沙", "青岛", "大连", "宁波", "郑州",
			"Beijing", "Shanghai", "Guangzhou", "Shenzhen", "Hangzhou", "Nanjing", "Chengdu", "Chongqing", "Wuhan", "Xi'an",
			"Tianjin", "Suzhou", "Xiamen", "Changsha", "Qingdao", "Dalian", "Ningbo", "Zhengzhou",
		},
		Orientations: []string{
			"朝南", "朝北", "朝东", "朝西", "南北通透", "东西向", "南向", "北向", "东向", "西向",
			"south-north-through", "north-south-through", "east-west-facing", "east-west",
			"south-facing", "north-facing", "east-facing", "west-facing",
			"facing south", "facing north", "facing east", "facing west",
		},
		OrientationMarkers: []string{"朝", "向", "facing", "towards", "toward"},
		PropertyTerms: []string{
			"公寓", "住宅", "小区", "楼盘", "花园", "广场", "新房", "二手房",
			"复式", "单身公寓", "一室", "两室", "三室", "四室", "多室",
			"一厅", "两厅", "大厅", "卧室", "客厅", "洗手间", "卫生间", "厨房",
			"电梯", "地铁", "学区", "学校", "公园", "医院", "商场", "超市",
			"精装", "豪装", "简装", "毛坯", "家具", "家电", "拎包入住",
			"apartment", "residential", "community", "new build", "second-hand", "duplex", "studio",
			"one-bedroom", "two-bedroom", "three-bedroom", "four-bedroom",
			"living room", "bedroom", "bathroom", "kitchen",
			"elevator", "subway", "metro", "school district", "school", "park", "hospital", "mall", "supermarket",
			"fully furnished", "furnished", "furniture", "appliances", "move-in ready",
		},
		PriceUnits:          []string{"元", "块", "万", "k", "yuan", "rmb"},
		PriceMaxSuffixes:    []string{"以下", "以内", "or below", "or less", "or under", "and below"},
		PriceMinSuffixes:    []string{"以上", "以外", "or above", "or more", "and above", "and up"},
		PriceApproxSuffixes: []string{"左右", "or so"},
		PriceMaxPrefixes:    []string{"不超过", "低于", "under", "below", "within", "less than", "up to", "at most", "no more than"},
		PriceMinPrefixes:    []string{"不低于", "高于", "over", "above", "beyond", "more than", "at least", "no less than"},
		PriceApproxPrefixes: []string{"大约", "大概", "around", "about", "approximately"},
		RangeSeparators:     []string{"到", "至", "~", "～", "-", "to", "until"},
	}
}

// LoadVocabulary returns the built-in vocabulary, with every non-empty list
// from the YAML file at path replacing its default. An empty path returns
// the defaults unchanged.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}

	replace(&vocab.Cities, override.Cities)
	replace(&vocab.Orientations, override.Orientations)
	replace(&vocab.OrientationMarkers, override.OrientationMarkers)
	replace(&vocab.PropertyTerms, override.PropertyTerms)
	replace(&vocab.PriceUnits, override.PriceUnits)
	replace(&vocab.PriceMaxSuffixes, override.PriceMaxSuffixes)
	replace(&vocab.PriceMinSuffixes, override.PriceMinSuffixes)
	replace(&vocab.PriceApproxSuffixes, override.PriceApproxSuffixes)
	replace(&vocab.PriceMaxPrefixes, override.PriceMaxPrefixes)
	replace(&vocab.PriceMinPrefixes, override.PriceMinPrefixes)
	replace(&vocab.PriceApproxPrefixes, override.PriceApproxPrefixes)
	replace(&vocab.RangeSeparators, override.RangeSeparators)

	return vocab, nil
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
