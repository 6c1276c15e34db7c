package resource

import (
	"fmt"
	"sort"

	"github.com/Sternrassler/history-gogo-client/pkg/dates"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Fixtures is an in-memory data set served by Mock and the fixture server.
type Fixtures struct {
	Dynasties []model.Dynasty
	Emperors  []model.EmperorDetail
	Events    []model.EventDetail
	Persons   []model.PersonDetail
}

// Timeline builds the timeline of a dynasty from the fixture records:
// one item per year that has events or a reigning emperor, in year order.
func (f Fixtures) Timeline(dynastyID string) (model.TimelineResponse, bool) {
	var dynasty *model.Dynasty
	for i := range f.Dynasties {
		if f.Dynasties[i].ID == dynastyID {
			dynasty = &f.Dynasties[i]
			break
		}
	}
	if dynasty == nil {
		return model.TimelineResponse{}, false
	}

	items := make(map[int]*model.TimelineItem)
	item := func(year int) *model.TimelineItem {
		it, ok := items[year]
		if !ok {
			it = &model.TimelineItem{Year: year, Events: []model.TimelineEvent{}}
			items[year] = it
		}
		return it
	}

	events := filterSlice(f.Events, func(e model.EventDetail) bool { return e.DynastyID == dynastyID })
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartDate.Before(events[j].StartDate.Time) })
	for _, e := range events {
		it := item(e.StartDate.Year())
		it.Events = append(it.Events, model.TimelineEvent{
			ID:        e.ID,
			Title:     e.Title,
			EventType: e.EventType,
			Location:  e.Location,
		})
	}

	emperors := filterSlice(f.Emperors, func(e model.EmperorDetail) bool { return e.DynastyID == dynastyID })
	sort.SliceStable(emperors, func(i, j int) bool { return emperors[i].DynastyOrder < emperors[j].DynastyOrder })
	for _, e := range emperors {
		if e.ReignEnd == nil {
			continue
		}
		for year := e.ReignStart.Year(); year <= e.ReignEnd.Year(); year++ {
			it := item(year)
			if it.Emperor == nil {
				it.Emperor = &model.TimelineEmperor{
					EmperorID:  e.ID,
					Name:       e.Name,
					TempleName: e.TempleName,
					ReignStart: e.ReignStart,
					ReignEnd:   e.ReignEnd,
				}
			}
		}
	}

	years := make([]int, 0, len(items))
	for y := range items {
		years = append(years, y)
	}
	sort.Ints(years)

	timeline := make([]model.TimelineItem, 0, len(years))
	for _, y := range years {
		timeline = append(timeline, *items[y])
	}

	return model.TimelineResponse{
		DynastyID:     dynasty.ID,
		DynastyName:   dynasty.Name,
		StartYear:     dynasty.StartYear,
		EndYear:       dynasty.EndYear,
		Timeline:      timeline,
		TotalEvents:   len(events),
		TotalEmperors: len(emperors),
	}, true
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func day(s string) dates.Time {
	t, err := dates.Parse(s)
	if err != nil {
		panic(fmt.Sprintf("resource: bad fixture date %q: %v", s, err))
	}
	return dates.Of(t)
}

func dayPtr(s string) *dates.Time {
	d := day(s)
	return &d
}

func intPtr(n int) *int { return &n }

// DefaultFixtures returns a small Ming and Qing data set.
func DefaultFixtures() Fixtures {
	s := String
	return Fixtures{
		Dynasties: []model.Dynasty{
			{
				ID:          "ming",
				Name:        "明朝",
				StartYear:   1368,
				EndYear:     1644,
				Capital:     s("北京"),
				Founder:     s("朱元璋"),
				Description: s("明朝是中国历史上最后一个由汉族建立的大一统中原王朝"),
				CreatedAt:   dayPtr("2024-01-01T00:00:00Z"),
				UpdatedAt:   dayPtr("2024-01-01T00:00:00Z"),
			},
			{
				ID:          "qing",
				Name:        "清朝",
				StartYear:   1644,
				EndYear:     1912,
				Capital:     s("北京"),
				Founder:     s("努尔哈赤"),
				Description: s("清朝是中国历史上最后一个封建王朝"),
				CreatedAt:   dayPtr("2024-01-01T00:00:00Z"),
				UpdatedAt:   dayPtr("2024-01-01T00:00:00Z"),
			},
		},
		Emperors: []model.EmperorDetail{
			{
				ID: "ming_taizu", DynastyID: "ming", Name: "朱元璋",
				TempleName: s("明太祖"), ReignTitle: s("洪武"),
				BirthDate: dayPtr("1328-10-21"), DeathDate: dayPtr("1398-06-24"),
				ReignStart: day("1368-01-23"), ReignEnd: dayPtr("1398-06-24"),
				ReignDuration: intPtr(30), DynastyOrder: 1,
				Biography:    s("明朝开国皇帝，原名朱重八，出身贫寒，参加红巾军起义，最终统一天下，建立明朝。"),
				Achievements: s("建立明朝，加强中央集权，稳定社会秩序。"),
				DataSource:   s("baidu,wiki"),
				EventCount:   intPtr(1), PersonCount: intPtr(2),
			},
			{
				ID: "ming_huidi", DynastyID: "ming", Name: "朱允炆",
				TempleName: s("明惠宗"), ReignTitle: s("建文"),
				BirthDate:  dayPtr("1377-12-05"),
				ReignStart: day("1398-06-30"), ReignEnd: dayPtr("1402-07-13"),
				ReignDuration: intPtr(4), DynastyOrder: 2,
				DataSource: s("baidu,wiki"),
				EventCount: intPtr(1), PersonCount: intPtr(0),
			},
			{
				ID: "ming_chengzu", DynastyID: "ming", Name: "朱棣",
				TempleName: s("明成祖"), ReignTitle: s("永乐"),
				BirthDate: dayPtr("1360-05-02"), DeathDate: dayPtr("1424-08-12"),
				ReignStart: day("1402-07-17"), ReignEnd: dayPtr("1424-08-12"),
				ReignDuration: intPtr(22), DynastyOrder: 3,
				Biography:    s("明朝第三位皇帝，发动靖难之役夺取帝位。"),
				Achievements: s("迁都北京，编纂永乐大典，派遣郑和下西洋。"),
				DataSource:   s("baidu,wiki"),
				EventCount:   intPtr(3), PersonCount: intPtr(1),
			},
			{
				ID: "ming_renzong", DynastyID: "ming", Name: "朱高炽",
				TempleName: s("明仁宗"), ReignTitle: s("洪熙"),
				BirthDate: dayPtr("1378-08-16"), DeathDate: dayPtr("1425-05-29"),
				ReignStart: day("1424-09-07"), ReignEnd: dayPtr("1425-05-29"),
				ReignDuration: intPtr(1), DynastyOrder: 4,
				DataSource: s("baidu,wiki"),
			},
			{
				ID: "ming_xuanzong", DynastyID: "ming", Name: "朱瞻基",
				TempleName: s("明宣宗"), ReignTitle: s("宣德"),
				BirthDate: dayPtr("1399-03-16"), DeathDate: dayPtr("1435-01-31"),
				ReignStart: day("1425-06-27"), ReignEnd: dayPtr("1435-01-31"),
				ReignDuration: intPtr(10), DynastyOrder: 5,
				DataSource: s("baidu,wiki"),
			},
			{
				ID: "qing_taizu", DynastyID: "qing", Name: "努尔哈赤",
				TempleName: s("清太祖"), ReignTitle: s("天命"),
				BirthDate: dayPtr("1559-02-21"), DeathDate: dayPtr("1626-09-30"),
				ReignStart: day("1616-02-17"), ReignEnd: dayPtr("1626-09-30"),
				ReignDuration: intPtr(10), DynastyOrder: 1,
				Biography:  s("后金建立者，统一女真各部。"),
				DataSource: s("baidu,wiki"),
			},
			{
				ID: "qing_shengzu", DynastyID: "qing", Name: "玄烨",
				TempleName: s("清圣祖"), ReignTitle: s("康熙"),
				BirthDate: dayPtr("1654-05-04"), DeathDate: dayPtr("1722-12-20"),
				ReignStart: day("1661-02-05"), ReignEnd: dayPtr("1722-12-20"),
				ReignDuration: intPtr(61), DynastyOrder: 4,
				DataSource: s("baidu,wiki"),
				EventCount: intPtr(1),
			},
		},
		Events: []model.EventDetail{
			{
				ID: "event_001", DynastyID: "ming", EmperorID: s("ming_taizu"),
				Title: "明朝建立", EventType: model.EventTypePolitical,
				StartDate: day("1368-01-23"), Location: s("南京"),
				Description: s("朱元璋在应天府称帝，国号大明。"),
				DataSource:  s("baidu,wiki"),
			},
			{
				ID: "event_002", DynastyID: "ming", EmperorID: s("ming_huidi"),
				Title: "靖难之役", EventType: model.EventTypeMilitary,
				StartDate: day("1399-08-06"), EndDate: dayPtr("1402-07-13"), Location: s("北京"),
				Description:  s("明朝初年，燕王朱棣起兵反对建文帝的一场战争。"),
				Participants: s("朱棣、朱允炆"),
				Casualties:   s("数十万"),
				Result:       s("朱棣获胜，登基称帝"),
				Significance: s("改变了明朝的政治格局，朱棣成为明成祖。"),
				DataSource:   s("baidu,wiki"),
				RelatedPersons: []string{},
				PersonCount:    intPtr(0),
			},
			{
				ID: "event_003", DynastyID: "ming", EmperorID: s("ming_chengzu"),
				Title: "永乐大典编纂", EventType: model.EventTypeCultural,
				StartDate: day("1403-01-01"), EndDate: dayPtr("1408-01-01"), Location: s("南京"),
				DataSource: s("baidu,wiki"),
			},
			{
				ID: "event_004", DynastyID: "ming", EmperorID: s("ming_chengzu"),
				Title: "郑和下西洋", EventType: model.EventTypeDiplomatic,
				StartDate: day("1405-07-11"), EndDate: dayPtr("1433-07-22"), Location: s("太仓刘家港"),
				Significance:   s("促进了中国与东南亚、南亚、西亚、东非等地区的交流。"),
				DataSource:     s("baidu,wiki"),
				RelatedPersons: []string{"person_001"},
				PersonCount:    intPtr(1),
			},
			{
				ID: "event_005", DynastyID: "ming", EmperorID: s("ming_chengzu"),
				Title: "迁都北京", EventType: model.EventTypePolitical,
				StartDate: day("1421-02-02"), Location: s("北京"),
				DataSource: s("baidu,wiki"),
			},
			{
				ID: "event_006", DynastyID: "qing", EmperorID: s("qing_shengzu"),
				Title: "雅克萨之战", EventType: model.EventTypeMilitary,
				StartDate: day("1685-06-23"), EndDate: dayPtr("1686-08-01"), Location: s("雅克萨"),
				DataSource: s("baidu,wiki"),
			},
		},
		Persons: []model.PersonDetail{
			{
				ID: "person_001", DynastyID: "ming", Name: "郑和",
				PersonType: model.PersonTypeGeneral, Alias: s("三宝太监"),
				BirthDate: dayPtr("1371-01-01"), DeathDate: dayPtr("1433-01-01"),
				Position:        s("钦差正使"),
				Biography:       s("郑和，本姓马，小名三宝，云南昆阳人。明朝著名航海家、外交家。"),
				Achievements:    s("七次下西洋。"),
				DataSource:      s("baidu,wiki"),
				RelatedEmperors: []string{"ming_chengzu"},
				Works:           []string{"郑和航海图"},
				EventCount:      intPtr(1), WorkCount: intPtr(1),
			},
			{
				ID: "person_002", DynastyID: "ming", Name: "王阳明",
				PersonType: model.PersonTypeThinker, Alias: s("王守仁"),
				BirthDate: dayPtr("1472-10-31"), DeathDate: dayPtr("1529-01-09"),
				Position:   s("南京兵部尚书"),
				DataSource: s("baidu,wiki"),
				Works:      []string{"传习录"},
				WorkCount:  intPtr(1),
			},
			{
				ID: "person_003", DynastyID: "ming", Name: "刘基",
				PersonType: model.PersonTypeOfficial, Alias: s("刘伯温"),
				BirthDate: dayPtr("1311-07-01"), DeathDate: dayPtr("1375-05-16"),
				DataSource:      s("baidu,wiki"),
				RelatedEmperors: []string{"ming_taizu"},
			},
			{
				ID: "person_004", DynastyID: "ming", Name: "徐达",
				PersonType: model.PersonTypeGeneral,
				BirthDate:  dayPtr("1332-01-01"), DeathDate: dayPtr("1385-03-20"),
				DataSource:      s("baidu,wiki"),
				RelatedEmperors: []string{"ming_taizu"},
			},
			{
				ID: "person_005", DynastyID: "qing", Name: "纳兰性德",
				PersonType: model.PersonTypeWriter, Alias: s("容若"),
				BirthDate: dayPtr("1655-01-19"), DeathDate: dayPtr("1685-07-01"),
				DataSource: s("baidu,wiki"),
				Works:      []string{"饮水词"},
			},
		},
	}
}
