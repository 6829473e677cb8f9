package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/candidateboard/internal/adapters/cache"
	"github.com/okian/candidateboard/internal/adapters/export"
	"github.com/okian/candidateboard/internal/adapters/repository"
	service "github.com/okian/candidateboard/internal/app"
	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/query"
	"github.com/okian/candidateboard/internal/domain/scoring"
	"github.com/okian/candidateboard/internal/generator"
	"github.com/okian/candidateboard/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var fixed = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithGenerator(generator.New(generator.WithSeed(99), generator.WithClock(func() time.Time { return fixed }))),
		service.WithClock(func() time.Time { return fixed }),
	}
	return service.New(append(base, opts...)...)
}

func pair() []model.Candidate {
	return scoring.RepairAll([]model.Candidate{
		{ID: 1, Name: "Maria Garcia", Skills: []string{"Operations"}, CrisisManagementScore: 90, SustainabilityScore: 80, TeamMotivationScore: 70},
		{ID: 2, Name: "James Smith", Skills: []string{"Logistics"}, CrisisManagementScore: 60, SustainabilityScore: 60, TeamMotivationScore: 60},
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		c := cache.New()
		svc := newService(service.WithCache(c))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the cache is warm", func() {
				So(c.Populated(cache.SlotCandidates), ShouldBeTrue)
				So(c.Populated(cache.SlotRankings), ShouldBeTrue)
			})

			Convey("And it is marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalCandidates"], ShouldEqual, 40)
				So(stats["storage"], ShouldEqual, "memory")
			})

			Convey("And starting twice is harmless", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a started service", t, func() {
		svc := newService()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it is marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_RankingPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service holding two candidates", t, func() {
		svc := newService()
		So(svc.Save(ctx, pair()), ShouldBeNil)

		Convey("When ranking the canonical list", func() {
			ranked := svc.Ranked(ctx)

			Convey("Then the higher total ranks first", func() {
				So(ranked, ShouldHaveLength, 2)
				So(ranked[0].ID, ShouldEqual, 1)
				So(ranked[0].TotalScore, ShouldEqual, 80.0)
				So(ranked[1].Rank, ShouldEqual, 2)
			})

			Convey("And ranking again returns the identical list", func() {
				So(svc.Ranked(ctx), ShouldResemble, ranked)
			})

			Convey("And a different list passed to a warm cache gets the cached ranking", func() {
				other := []model.Candidate{{ID: 9, Name: "Other", TotalScore: 99}}
				So(svc.Rank(other), ShouldResemble, ranked)
			})
		})

		Convey("When saving a new list after ranking", func() {
			_ = svc.Ranked(ctx)
			_ = svc.Skills(ctx)
			next := scoring.RepairAll([]model.Candidate{
				{ID: 3, Name: "Lee Wong", Skills: []string{"Maintenance"}, CrisisManagementScore: 50, SustainabilityScore: 50, TeamMotivationScore: 50},
			})
			So(svc.Save(ctx, next), ShouldBeNil)

			Convey("Then load, rank and aggregates reflect it", func() {
				So(svc.Load(ctx), ShouldHaveLength, 1)
				ranked := svc.Ranked(ctx)
				So(ranked, ShouldHaveLength, 1)
				So(ranked[0].ID, ShouldEqual, 3)
				aggs := svc.Skills(ctx)
				So(aggs, ShouldHaveLength, 1)
				So(aggs[0].Skill, ShouldEqual, "Maintenance")
			})
		})

		Convey("When asking for skill names", func() {
			So(svc.SkillNames(ctx), ShouldResemble, []string{"Logistics", "Operations"})
		})
	})
}

func TestService_CancelledReadsDoNotStick(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that just saved two candidates", t, func() {
		c := cache.New()
		svc := newService(service.WithCache(c))
		So(svc.Save(ctx, pair()), ShouldBeNil)

		Convey("When a reader gives up before the cache is warm", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			ranked := svc.Ranked(cancelled)
			aggs := svc.Skills(cancelled)

			Convey("Then it gets the fallback without caching anything", func() {
				So(ranked, ShouldHaveLength, 40)
				So(aggs, ShouldNotBeEmpty)
				So(c.Populated(cache.SlotCandidates), ShouldBeFalse)
				So(c.Populated(cache.SlotRankings), ShouldBeFalse)
				So(c.Populated(cache.SlotSkills), ShouldBeFalse)
			})

			Convey("And later readers see the saved list", func() {
				So(svc.Load(ctx), ShouldHaveLength, 2)
				page := svc.Query(ctx, query.Params{})
				So(page.TotalCount, ShouldEqual, 2)
				card, err := svc.Candidate(ctx, 1)
				So(err, ShouldBeNil)
				So(card.Rank, ShouldEqual, 1)
				So(svc.Skills(ctx), ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a regeneration", t, func() {
		svc := newService()
		gen, err := svc.Regenerate(ctx, 3)
		So(err, ShouldBeNil)

		Convey("Then the leader is one of the generated candidates", func() {
			So(gen.Leader, ShouldNotBeNil)
			So(gen.Leader.Rank, ShouldEqual, 1)
			So(gen.Leader.ID, ShouldBeBetweenOrEqual, 1, 3)
			So(svc.Ranked(ctx)[0].ID, ShouldEqual, gen.Leader.ID)
		})
	})
}

func TestService_Candidate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service holding two candidates", t, func() {
		svc := newService()
		So(svc.Save(ctx, pair()), ShouldBeNil)

		Convey("When fetching a known candidate", func() {
			card, err := svc.Candidate(ctx, 2)

			Convey("Then its rank and tier are filled in", func() {
				So(err, ShouldBeNil)
				So(card.Rank, ShouldEqual, 2)
				So(card.Tier, ShouldEqual, scoring.TierNeedsImprovement)
			})
		})

		Convey("When fetching an unknown candidate", func() {
			_, err := svc.Candidate(ctx, 404)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service configured with a page size of 5", t, func() {
		svc := newService(service.WithPageSize(5))

		Convey("When querying without filters", func() {
			page := svc.Query(ctx, query.Params{Page: 2})

			Convey("Then the default dataset is paged by 5", func() {
				So(page.Items, ShouldHaveLength, 5)
				So(page.Items[0].Rank, ShouldEqual, 6)
				So(page.TotalPages, ShouldEqual, 8)
				So(page.TotalCount, ShouldEqual, 40)
			})
		})

		Convey("When the caller sets a page size", func() {
			page := svc.Query(ctx, query.Params{PageSize: 20})
			So(page.Items, ShouldHaveLength, 20)
		})
	})
}

func TestService_Regenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with working storage", t, func() {
		mem := repository.NewMemoryStorage()
		svc := newService(service.WithStorage(mem), service.WithCandidateCount(12))
		before := svc.Ranked(ctx)

		Convey("When regenerating with the default count", func() {
			gen, err := svc.Regenerate(ctx, 0)

			Convey("Then the new list is persisted and ranked", func() {
				So(err, ShouldBeNil)
				So(gen.Count, ShouldEqual, 12)
				So(gen.Persisted, ShouldBeTrue)
				So(gen.BatchID, ShouldNotBeEmpty)
				So(gen.Leader, ShouldNotBeNil)
				So(gen.Leader.Rank, ShouldEqual, 1)
				So(gen.GeneratedAt.Equal(fixed), ShouldBeTrue)

				ranked := svc.Ranked(ctx)
				So(ranked, ShouldHaveLength, 12)
				So(len(ranked), ShouldNotEqual, len(before))

				data, readErr := mem.Read(ctx)
				So(readErr, ShouldBeNil)
				stored, decodeErr := repository.Decode(data)
				So(decodeErr, ShouldBeNil)
				So(stored, ShouldHaveLength, 12)
			})

			Convey("And stats remember the run", func() {
				stats := svc.GetStats()
				So(stats["lastGeneration"], ShouldNotBeNil)
			})
		})
	})

	Convey("Given a service whose storage rejects writes", t, func() {
		mem := repository.NewMemoryStorage()
		mem.FailWrites(errors.New("quota exceeded"))
		svc := newService(service.WithStorage(mem))

		Convey("When regenerating", func() {
			gen, err := svc.Regenerate(ctx, 7)

			Convey("Then the failure is non-fatal", func() {
				So(service.IsPersistError(err), ShouldBeTrue)
				So(gen.Persisted, ShouldBeFalse)
				So(gen.Error, ShouldContainSubstring, "quota exceeded")
			})

			Convey("And the session serves the new list", func() {
				So(svc.Load(ctx), ShouldHaveLength, 7)
				So(svc.Ranked(ctx), ShouldHaveLength, 7)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		svc := newService()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then generation fails without touching the list", func() {
			_, err := svc.Regenerate(cctx, 5)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(svc.Load(ctx), ShouldHaveLength, 40)
		})
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service holding two candidates", t, func() {
		svc := newService()
		So(svc.Save(ctx, pair()), ShouldBeNil)

		Convey("When exporting JSON", func() {
			data, err := svc.Export(ctx, export.FormatJSON)
			So(err, ShouldBeNil)
			list, err := repository.Decode(data)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 2)
		})

		Convey("When exporting SQL", func() {
			data, err := svc.Export(ctx, export.FormatSQL)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "-- Generated: 2025-06-01T08:30:00Z")
			So(strings.Count(string(data), "INSERT INTO evaluations"), ShouldEqual, 2)
		})

		Convey("When exporting XLSX", func() {
			data, err := svc.Export(ctx, export.FormatXLSX)
			So(err, ShouldBeNil)
			So(string(data[:2]), ShouldEqual, "PK")
		})

		Convey("When exporting an unknown format", func() {
			_, err := svc.Export(ctx, export.Format("pdf"))
			So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestService_Concurrency(t *testing.T) {
	Convey("Given concurrent readers and writers", t, func() {
		ctx := context.Background()
		svc := newService(service.WithCandidateCount(15))
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					page := svc.Query(ctx, query.Params{Page: 1})
					if len(page.Items) == 0 {
						t.Error("empty first page")
					}
					_ = svc.Skills(ctx)
				}
			}()
		}
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Regenerate(ctx, 0)
			}()
		}
		wg.Wait()

		Convey("Then the final view is coherent", func() {
			So(svc.Load(ctx), ShouldHaveLength, 15)
			ranked := svc.Ranked(ctx)
			So(ranked, ShouldHaveLength, 15)
			for i, r := range ranked {
				So(r.Rank, ShouldEqual, i+1)
			}
		})
	})
}
