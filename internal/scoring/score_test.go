package scoring

import "testing"

func TestScoreKnownRolls(t *testing.T) {
	tcs := []struct {
		name      string
		faces     []int
		want      int
		wantKinds []Kind
		allUsed   bool
	}{
		{name: "empty", faces: nil, want: 0},
		{name: "three ones", faces: []int{1, 1, 1}, want: 1000, wantKinds: []Kind{KindOfAKind}, allUsed: true},
		{name: "four sixes", faces: []int{6, 6, 6, 6}, want: 1200, wantKinds: []Kind{KindOfAKind}, allUsed: true},
		{name: "five twos", faces: []int{2, 2, 2, 2, 2}, want: 800, wantKinds: []Kind{KindOfAKind}, allUsed: true},
		{name: "six threes", faces: []int{3, 3, 3, 3, 3, 3}, want: 2400, wantKinds: []Kind{KindOfAKind}, allUsed: true},
		{name: "three pair", faces: []int{2, 2, 3, 3, 4, 4}, want: 750, wantKinds: []Kind{KindThreePair}, allUsed: true},
		{name: "four and pair of ones keeps kind", faces: []int{1, 1, 6, 6, 6, 6}, want: 1400, wantKinds: []Kind{KindOfAKind, KindLooseDigits}, allUsed: true},
		{name: "four and dead pair becomes three pair", faces: []int{2, 2, 2, 2, 3, 3}, want: 750, wantKinds: []Kind{KindThreePair}, allUsed: true},
		{name: "straight", faces: []int{3, 1, 6, 2, 5, 4}, want: 1500, wantKinds: []Kind{KindStraight}, allUsed: true},
		{name: "farkle", faces: []int{2, 3, 4}, want: 0},
		{name: "loose digits", faces: []int{1, 5, 3}, want: 150, wantKinds: []Kind{KindLooseDigits}},
		{name: "two triples", faces: []int{4, 4, 4, 5, 5, 5}, want: 900, wantKinds: []Kind{KindOfAKind, KindOfAKind}, allUsed: true},
		{name: "triple plus loose", faces: []int{2, 2, 2, 1, 5, 6}, want: 350, wantKinds: []Kind{KindOfAKind, KindLooseDigits}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.faces)
			if got.Points != tc.want {
				t.Fatalf("Score(%v).Points = %d, want %d", tc.faces, got.Points, tc.want)
			}
			if len(got.Combinations) != len(tc.wantKinds) {
				t.Fatalf("Score(%v) combinations = %v, want kinds %v", tc.faces, got.Combinations, tc.wantKinds)
			}
			for i, k := range tc.wantKinds {
				if got.Combinations[i].Kind != k {
					t.Fatalf("combination %d kind = %s, want %s", i, got.Combinations[i].Kind, k)
				}
			}
			if len(tc.faces) > 0 && got.AllUsed() != tc.allUsed {
				t.Fatalf("Score(%v).AllUsed() = %v, want %v (used %v)", tc.faces, got.AllUsed(), tc.allUsed, got.Used)
			}
			if got.Farkle() != (tc.want == 0) {
				t.Fatalf("Score(%v).Farkle() = %v", tc.faces, got.Farkle())
			}
		})
	}
}

func TestScoreFarkleUsesNothing(t *testing.T) {
	got := Score([]int{2, 3, 4})
	if len(got.Used) != 3 {
		t.Fatalf("used flags = %d, want 3", len(got.Used))
	}
	for i, u := range got.Used {
		if u {
			t.Fatalf("die %d marked used in a farkle", i)
		}
	}
}

func TestScoreLooseDigitsMarkOnlyScoringDice(t *testing.T) {
	got := Score([]int{1, 3, 5, 6})
	want := []bool{true, false, true, false}
	for i := range want {
		if got.Used[i] != want[i] {
			t.Fatalf("used = %v, want %v", got.Used, want)
		}
	}
}

func TestScoreIgnoresOutOfRangeFaces(t *testing.T) {
	tests := []struct {
		faces []int
		want  int
		used  []bool
	}{
		{[]int{7}, 0, []bool{false}},
		{[]int{0, -1}, 0, []bool{false, false}},
		{[]int{1, 7, 5}, 150, []bool{true, false, true}},
		{[]int{7, 7, 7}, 0, []bool{false, false, false}},
		{[]int{2, 2, 2, 9, 1, 0}, 300, []bool{true, true, true, false, true, false}},
	}
	for _, tc := range tests {
		got := Score(tc.faces)
		if got.Points != tc.want {
			t.Fatalf("Score(%v) = %d, want %d", tc.faces, got.Points, tc.want)
		}
		for i := range tc.used {
			if got.Used[i] != tc.used[i] {
				t.Fatalf("Score(%v) used = %v, want %v", tc.faces, got.Used, tc.used)
			}
		}
	}
}

// TestScoreEveryRollIsADisjointPartition walks every ordered roll of up to six
// dice and checks the structural invariants of the result.
func TestScoreEveryRollIsADisjointPartition(t *testing.T) {
	for n := 0; n <= 6; n++ {
		faces := make([]int, n)
		for i := range faces {
			faces[i] = 1
		}
		for {
			checkPartition(t, faces)
			if !next(faces) {
				break
			}
		}
	}
}

func checkPartition(t *testing.T, faces []int) {
	t.Helper()
	got := Score(faces)
	seen := make(map[int]bool)
	sum := 0
	for _, c := range got.Combinations {
		sum += c.Points
		for _, idx := range c.Dice {
			if idx < 0 || idx >= len(faces) {
				t.Fatalf("Score(%v) index %d out of range", faces, idx)
			}
			if seen[idx] {
				t.Fatalf("Score(%v) index %d used twice", faces, idx)
			}
			seen[idx] = true
		}
	}
	if sum != got.Points {
		t.Fatalf("Score(%v) points %d != sum of combinations %d", faces, got.Points, sum)
	}
	for idx, u := range got.Used {
		if u != seen[idx] {
			t.Fatalf("Score(%v) used[%d] = %v, combinations say %v", faces, idx, u, seen[idx])
		}
	}
	if isPermutationOfStraight(faces) {
		if got.Points != StraightPoints || got.Combinations[0].Kind != KindStraight {
			t.Fatalf("Score(%v) = %+v, want straight", faces, got)
		}
	}
}

func isPermutationOfStraight(faces []int) bool {
	if len(faces) != 6 {
		return false
	}
	var seen [7]bool
	for _, f := range faces {
		if seen[f] {
			return false
		}
		seen[f] = true
	}
	return true
}

// next advances faces like an odometer over 1..6.
func next(faces []int) bool {
	for i := len(faces) - 1; i >= 0; i-- {
		if faces[i] < Sides {
			faces[i]++
			return true
		}
		faces[i] = 1
	}
	return false
}
